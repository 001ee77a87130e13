// Package store persists a tokenizer configuration (merge table,
// vocabulary, added vocabulary, and substitution settings) to SQLite so it
// can be loaded back without re-parsing whatever source format it was
// originally distributed in.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexigo/spmbpe/tokenizer"
)

// Store wraps a SQLite connection holding one tokenizer configuration.
// SQLite serializes its own writers, so Store needs no internal lock; the
// connection pool is capped to keep concurrent Load calls from opening more
// file handles than the embedded driver can usefully serve.
type Store struct {
	conn *sql.DB
}

// Open opens (and if necessary creates) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	conn.SetMaxOpenConns(4)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS pieces (
		id    INTEGER PRIMARY KEY,
		value TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS merges (
		rank  INTEGER PRIMARY KEY,
		left  TEXT NOT NULL,
		right TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS added_vocab (
		ordinal INTEGER PRIMARY KEY,
		value   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS config (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

const (
	configKeySentinel        = "sentinel"
	configKeyDisableSentinel = "disable_sentinel"
	configKeyForwardMap      = "token_replace_map"
	configKeyReverseMap      = "reverse_tokens_replace_map"
)

// Save replaces the stored configuration with cfg in a single transaction.
func (s *Store) Save(cfg *tokenizer.Config) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pieces"); err != nil {
		return fmt.Errorf("clear pieces: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM merges"); err != nil {
		return fmt.Errorf("clear merges: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM added_vocab"); err != nil {
		return fmt.Errorf("clear added_vocab: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM config"); err != nil {
		return fmt.Errorf("clear config: %w", err)
	}

	pieceStmt, err := tx.Prepare("INSERT INTO pieces (id, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare piece insert: %w", err)
	}
	defer pieceStmt.Close()
	for piece, id := range cfg.Vocab {
		if _, err := pieceStmt.Exec(id, piece); err != nil {
			return fmt.Errorf("insert piece %q: %w", piece, err)
		}
	}

	mergeStmt, err := tx.Prepare("INSERT INTO merges (rank, left, right) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare merge insert: %w", err)
	}
	defer mergeStmt.Close()
	for pair, rank := range cfg.BPERanks {
		if _, err := mergeStmt.Exec(rank, pair[0], pair[1]); err != nil {
			return fmt.Errorf("insert merge (%q,%q): %w", pair[0], pair[1], err)
		}
	}

	avStmt, err := tx.Prepare("INSERT INTO added_vocab (ordinal, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare added_vocab insert: %w", err)
	}
	defer avStmt.Close()
	for i, entry := range cfg.AddedVocab {
		if _, err := avStmt.Exec(i, entry); err != nil {
			return fmt.Errorf("insert added_vocab entry %q: %w", entry, err)
		}
	}

	if err := saveConfigMaps(tx, cfg); err != nil {
		return err
	}

	return tx.Commit()
}

func saveConfigMaps(tx *sql.Tx, cfg *tokenizer.Config) error {
	configStmt, err := tx.Prepare("INSERT INTO config (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare config insert: %w", err)
	}
	defer configStmt.Close()

	if _, err := configStmt.Exec(configKeySentinel, cfg.Sentinel); err != nil {
		return fmt.Errorf("insert sentinel config: %w", err)
	}
	disableSentinel := "0"
	if cfg.DisableSentinel {
		disableSentinel = "1"
	}
	if _, err := configStmt.Exec(configKeyDisableSentinel, disableSentinel); err != nil {
		return fmt.Errorf("insert disable_sentinel config: %w", err)
	}

	for original, replacement := range cfg.TokenReplaceMap {
		if _, err := configStmt.Exec(configKeyForwardMap+":"+original, replacement); err != nil {
			return fmt.Errorf("insert forward map entry %q: %w", original, err)
		}
	}
	for original, replacement := range cfg.ReverseTokenReplaceMap {
		if _, err := configStmt.Exec(configKeyReverseMap+":"+original, replacement); err != nil {
			return fmt.Errorf("insert reverse map entry %q: %w", original, err)
		}
	}

	return nil
}

// Load reads the stored configuration back into a tokenizer.Config.
func (s *Store) Load() (*tokenizer.Config, error) {
	cfg := &tokenizer.Config{
		BPERanks:               make(map[[2]string]int),
		Vocab:                  make(map[string]int32),
		TokenReplaceMap:        make(map[string]string),
		ReverseTokenReplaceMap: make(map[string]string),
	}

	if err := s.loadPieces(cfg); err != nil {
		return nil, err
	}
	if err := s.loadMerges(cfg); err != nil {
		return nil, err
	}
	if err := s.loadAddedVocab(cfg); err != nil {
		return nil, err
	}
	if err := s.loadConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *Store) loadPieces(cfg *tokenizer.Config) error {
	rows, err := s.conn.Query("SELECT id, value FROM pieces")
	if err != nil {
		return fmt.Errorf("query pieces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int32
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return fmt.Errorf("scan piece: %w", err)
		}
		cfg.Vocab[value] = id
	}
	return rows.Err()
}

func (s *Store) loadMerges(cfg *tokenizer.Config) error {
	rows, err := s.conn.Query("SELECT rank, left, right FROM merges")
	if err != nil {
		return fmt.Errorf("query merges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rank int
		var left, right string
		if err := rows.Scan(&rank, &left, &right); err != nil {
			return fmt.Errorf("scan merge: %w", err)
		}
		cfg.BPERanks[[2]string{left, right}] = rank
	}
	return rows.Err()
}

func (s *Store) loadAddedVocab(cfg *tokenizer.Config) error {
	rows, err := s.conn.Query("SELECT value FROM added_vocab ORDER BY ordinal ASC")
	if err != nil {
		return fmt.Errorf("query added_vocab: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return fmt.Errorf("scan added_vocab entry: %w", err)
		}
		cfg.AddedVocab = append(cfg.AddedVocab, value)
	}
	return rows.Err()
}

func (s *Store) loadConfig(cfg *tokenizer.Config) error {
	rows, err := s.conn.Query("SELECT key, value FROM config")
	if err != nil {
		return fmt.Errorf("query config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan config entry: %w", err)
		}
		switch {
		case key == configKeySentinel:
			cfg.Sentinel = value
		case key == configKeyDisableSentinel:
			cfg.DisableSentinel = value == "1"
		case len(key) > len(configKeyForwardMap)+1 && key[:len(configKeyForwardMap)] == configKeyForwardMap:
			cfg.TokenReplaceMap[key[len(configKeyForwardMap)+1:]] = value
		case len(key) > len(configKeyReverseMap)+1 && key[:len(configKeyReverseMap)] == configKeyReverseMap:
			cfg.ReverseTokenReplaceMap[key[len(configKeyReverseMap)+1:]] = value
		}
	}
	return rows.Err()
}
