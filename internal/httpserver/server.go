package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/blackmichael/solana-twitter/internal/api"
	"github.com/blackmichael/solana-twitter/internal/config"
	"github.com/blackmichael/solana-twitter/internal/domain"
)

// maxBodyBytes bounds request bodies. A maximal tweet is well under this.
const maxBodyBytes = 16 << 10

// Server is the HTTP server that exposes the tweet program.
type Server struct {
	cfg          *config.Config
	tweetService *domain.TweetService
	logger       *slog.Logger
	httpServer   *http.Server
}

// NewServer creates a new HTTP server. stream serves GET /v1/stream and
// metrics serves GET /metrics.
func NewServer(cfg *config.Config, tweetService *domain.TweetService, stream, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		tweetService: tweetService,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/program", s.handleDescribeProgram)
	mux.HandleFunc("POST /v1/tweets", s.handleSendTweet)
	mux.HandleFunc("GET /v1/accounts/{address}", s.handleGetTweet)
	mux.HandleFunc("POST /v1/airdrop", s.handleAirdrop)
	mux.HandleFunc("GET /v1/balances/{identity}", s.handleBalance)
	mux.Handle("GET /v1/stream", stream)
	mux.Handle("GET /metrics", metrics)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDescribeProgram(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.Program{
		ProgramID:    s.tweetService.ProgramID().String(),
		TweetSpace:   domain.TweetSpace,
		RentLamports: s.tweetService.TweetRent(),
		MaxTopic:     domain.MaxTopicChars,
		MaxContent:   domain.MaxContentChars,
	})
}

func (s *Server) handleSendTweet(w http.ResponseWriter, r *http.Request) {
	var req api.SendTweetRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	tx, err := parseSendTweet(req)
	if err != nil {
		s.logger.Warn("invalid send tweet request", "error", err)
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	created, err := s.tweetService.SendTweet(r.Context(), tx)
	if err != nil {
		s.writeServiceError(w, "send tweet", err)
		return
	}

	writeJSON(w, http.StatusCreated, api.Tweet{
		Address:   created.Address.String(),
		Author:    created.Tweet.Author.String(),
		Timestamp: created.Tweet.Timestamp,
		Topic:     created.Tweet.Topic,
		Content:   created.Tweet.Content,
		Lamports:  created.Lamports,
	})
}

func (s *Server) handleGetTweet(w http.ResponseWriter, r *http.Request) {
	address, err := domain.ParseIdentity(r.PathValue("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	tweet, err := s.tweetService.GetTweet(r.Context(), address)
	if err != nil {
		s.writeServiceError(w, "get tweet", err)
		return
	}

	writeJSON(w, http.StatusOK, api.Tweet{
		Address:   address.String(),
		Author:    tweet.Author.String(),
		Timestamp: tweet.Timestamp,
		Topic:     tweet.Topic,
		Content:   tweet.Content,
	})
}

func (s *Server) handleAirdrop(w http.ResponseWriter, r *http.Request) {
	var req api.AirdropRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	id, err := domain.ParseIdentity(req.Identity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	balance, err := s.tweetService.Airdrop(r.Context(), id, req.Lamports)
	if err != nil {
		s.writeServiceError(w, "airdrop", err)
		return
	}

	writeJSON(w, http.StatusOK, api.Balance{Identity: id.String(), Lamports: balance})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseIdentity(r.PathValue("identity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	balance, err := s.tweetService.Balance(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "balance", err)
		return
	}

	writeJSON(w, http.StatusOK, api.Balance{Identity: id.String(), Lamports: balance})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid JSON body")
		return false
	}
	return true
}

// parseSendTweet accepts either the base58 encoded instruction or its
// individual fields, never both.
func parseSendTweet(req api.SendTweetRequest) (domain.SignedSendTweet, error) {
	var (
		ix  domain.SendTweetInstruction
		err error
	)
	if req.Instruction != "" {
		if req.Tweet != "" || req.Author != "" || req.Topic != "" || req.Content != "" {
			return domain.SignedSendTweet{}, errors.New("instruction excludes tweet, author, topic and content")
		}
		raw, err := base58.Decode(req.Instruction)
		if err != nil {
			return domain.SignedSendTweet{}, fmt.Errorf("instruction: %w", err)
		}
		if err := ix.UnmarshalBinary(raw); err != nil {
			return domain.SignedSendTweet{}, err
		}
	} else {
		ix.Topic = req.Topic
		ix.Content = req.Content
		if ix.Tweet, err = domain.ParseIdentity(req.Tweet); err != nil {
			return domain.SignedSendTweet{}, fmt.Errorf("tweet: %w", err)
		}
		if ix.Author, err = domain.ParseIdentity(req.Author); err != nil {
			return domain.SignedSendTweet{}, fmt.Errorf("author: %w", err)
		}
	}

	var sig []byte
	if req.Signature != "" {
		sig, err = base58.Decode(req.Signature)
		if err != nil {
			return domain.SignedSendTweet{}, fmt.Errorf("signature: %w", err)
		}
	}

	return domain.SignedSendTweet{Instruction: ix, Signature: sig}, nil
}

// writeServiceError maps domain and collaborator errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	if pe, ok := domain.AsProgramError(err); ok {
		writeJSON(w, http.StatusBadRequest, api.Error{Error: pe.Name, Code: pe.Code, Message: pe.Message})
		return
	}

	switch {
	case errors.Is(err, domain.ErrMissingSignature), errors.Is(err, domain.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, "SignatureVerificationFailed", err.Error())
	case errors.Is(err, domain.ErrSlotExists):
		writeError(w, http.StatusConflict, "AccountAlreadyInUse", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "InsufficientFunds", err.Error())
	case errors.Is(err, domain.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "AccountNotFound", err.Error())
	case errors.Is(err, domain.ErrAccountMismatch):
		writeError(w, http.StatusUnprocessableEntity, "AccountDidNotDeserialize", err.Error())
	case errors.Is(err, domain.ErrInvalidEncoding):
		writeError(w, http.StatusBadRequest, "InstructionDidNotDeserialize", err.Error())
	case errors.Is(err, domain.ErrAirdropLimit):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		s.logger.Error("request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to "+op)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, api.Error{
		Error:   errType,
		Message: message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades pass through the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
