// Package server exposes a tokenizer.Tokenizer over HTTP using gin.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexigo/spmbpe/api"
	"github.com/lexigo/spmbpe/tokenizer"
)

// Server wraps a *tokenizer.Tokenizer and a gin engine.
type Server struct {
	tok    *tokenizer.Tokenizer
	engine *gin.Engine
	log    *slog.Logger
}

// New builds a Server around tok. log defaults to slog.Default() if nil.
func New(tok *tokenizer.Tokenizer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{tok: tok, log: log}
	s.engine = gin.New()
	s.engine.Use(requestID(), gin.Recovery(), s.logRequests())
	s.routes()
	return s
}

// Serve runs the HTTP server on ln until the listener closes or the process
// is signaled to stop; it blocks for the lifetime of the listener.
func (s *Server) Serve(ln net.Listener) error {
	httpServer := &http.Server{Handler: s.engine}
	s.log.Info("serving", "addr", ln.Addr().String())
	return httpServer.Serve(ln)
}

func (s *Server) routes() {
	s.engine.GET("/api/healthz", s.handleHealthz)
	s.engine.POST("/api/encode", s.handleEncode)
	s.engine.POST("/api/encode/batch", s.handleEncodeBatch)
	s.engine.POST("/api/decode", s.handleDecode)
	s.engine.GET("/api/vocab/stats", s.handleVocabStats)
}

const requestIDHeader = "X-Request-Id"

// requestID stamps every request with an ID (the incoming X-Request-Id if the
// client sent one, otherwise a fresh UUID), echoed back in the response
// header and attached to the gin context for logging.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleEncode(c *gin.Context) {
	var req api.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	tokenize := true
	if req.Tokenize != nil {
		tokenize = *req.Tokenize
	}

	pieces, ids, err := s.tok.Encode(req.Text, req.Alpha, tokenize)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.EncodeResponse{Pieces: pieces, IDs: ids})
}

func (s *Server) handleEncodeBatch(c *gin.Context) {
	var req api.EncodeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ids, err := s.tok.EncodeBatch(c.Request.Context(), req.Texts, req.Alpha)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.EncodeBatchResponse{IDs: ids})
}

func (s *Server) handleDecode(c *gin.Context) {
	var req api.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	text, err := s.tok.Decode(req.IDs)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DecodeResponse{Text: text})
}

func (s *Server) handleVocabStats(c *gin.Context) {
	c.JSON(http.StatusOK, api.VocabStatsResponse{
		VocabSize:       s.tok.VocabSize(),
		MergeCount:      s.tok.MergeCount(),
		AddedVocabCount: s.tok.AddedVocabCount(),
	})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: err.Error()})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("request failed", "request_id", c.GetString("request_id"), "error", err)
	c.JSON(http.StatusInternalServerError, api.Error{Code: http.StatusInternalServerError, Message: err.Error()})
}
