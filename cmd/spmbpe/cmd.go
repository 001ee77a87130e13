package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lexigo/spmbpe/server"
	"github.com/lexigo/spmbpe/store"
	"github.com/lexigo/spmbpe/tokenizer"
)

// openTokenizer loads the tokenizer configuration from the SQLite database
// named by the --db flag.
func openTokenizer(cmd *cobra.Command) (*tokenizer.Tokenizer, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cfg, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return tokenizer.New(*cfg), nil
}

func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:   "spmbpe",
		Short: "SentencePiece-style BPE tokenizer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().String("db", "spmbpe.db", "path to the tokenizer SQLite database")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newVocabCmd(),
		newServeCmd(),
	)

	return rootCmd
}

func newEncodeCmd() *cobra.Command {
	var alpha float32
	var piecesOnly bool

	cmd := &cobra.Command{
		Use:   "encode <text>",
		Short: "Encode text into subword pieces and IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := openTokenizer(cmd)
			if err != nil {
				return err
			}

			pieces, ids, err := tok.Encode(args[0], alpha, !piecesOnly)
			if err != nil {
				return err
			}

			fmt.Println(strings.Join(pieces, " "))
			if !piecesOnly {
				idStrs := make([]string, len(ids))
				for i, id := range ids {
					idStrs[i] = strconv.FormatInt(int64(id), 10)
				}
				fmt.Println(strings.Join(idStrs, " "))
			}
			return nil
		},
	}

	cmd.Flags().Float32Var(&alpha, "alpha", 0, "dropout probability (0 disables dropout, 1 applies no merges)")
	cmd.Flags().BoolVar(&piecesOnly, "pieces-only", false, "print pieces without mapping to IDs")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <id...>",
		Short: "Decode a sequence of token IDs back into text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := openTokenizer(cmd)
			if err != nil {
				return err
			}

			ids := make([]int32, len(args))
			for i, a := range args {
				id, err := strconv.ParseInt(a, 10, 32)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", a, err)
				}
				ids[i] = int32(id)
			}

			text, err := tok.Decode(ids)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	return cmd
}

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect the active vocabulary",
	}
	cmd.AddCommand(newVocabStatsCmd())
	return cmd
}

func newVocabStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print vocabulary, merge, and added-vocabulary counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := openTokenizer(cmd)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"METRIC", "COUNT"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk([][]string{
				{"vocab size", strconv.Itoa(tok.VocabSize())},
				{"merges", strconv.Itoa(tok.MergeCount())},
				{"added vocab", strconv.Itoa(tok.AddedVocabCount())},
			})
			table.Render()
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tokenizer over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := openTokenizer(cmd)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			return server.New(tok, nil).Serve(ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "address to listen on")
	return cmd
}
