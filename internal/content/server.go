// Package content serves level placements over HTTP: the remote level API
// backed by a store, plus the static fallback and model-hint files.
package content

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/toycar/internal/db"
	"github.com/udisondev/toycar/internal/model"
)

const shutdownTimeout = 5 * time.Second

// LevelReader is the part of db.Store the server needs.
type LevelReader interface {
	LevelBlocks(ctx context.Context, level int) ([]model.PlacementRecord, error)
}

// Options configures a Server.
type Options struct {
	// StaticDir is served under /data/ and /config/; empty disables it.
	StaticDir string
	Gzip      bool
}

// Server is the content HTTP server.
type Server struct {
	store   LevelReader
	handler http.Handler
}

// NewServer creates a Server over store.
func NewServer(store LevelReader, opts Options) *Server {
	s := &Server{store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/levels/{level}", s.handleLevel)
	if opts.StaticDir != "" {
		files := http.FileServer(http.Dir(opts.StaticDir))
		mux.Handle("GET /data/", files)
		mux.Handle("GET /config/", files)
	}

	var h http.Handler = mux
	if opts.Gzip {
		h = gzhttp.GzipHandler(mux)
	}
	s.handler = h
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("content server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("content server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down content server: %w", err)
	}
	slog.Info("content server stopped")
	return nil
}

type levelResponse struct {
	Blocks []model.PlacementRecord `json:"blocks"`
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil || level < 1 {
		http.Error(w, "invalid level", http.StatusBadRequest)
		return
	}

	records, err := s.store.LevelBlocks(r.Context(), level)
	if errors.Is(err, db.ErrLevelNotFound) {
		http.Error(w, "level not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("loading level blocks", "level", level, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []model.PlacementRecord{}
	}
	body, err := json.Marshal(levelResponse{Blocks: records})
	if err != nil {
		slog.Error("encoding level blocks", "level", level, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// ServeContent answers If-None-Match against this ETag.
	w.Header().Set("ETag", etag(body))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(body))
}

// etag is a strong validator over the encoded body.
func etag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
