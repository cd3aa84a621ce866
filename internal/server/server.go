/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes a Session over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gocollector/internal/domain"
	applog "gocollector/internal/log"
	"gocollector/internal/session"
	"gocollector/internal/version"
)

// Options configure the HTTP server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server holds the HTTP server dependencies
type Server struct {
	sess   *session.Session
	opts   Options
	router chi.Router
	log    *slog.Logger
}

// New creates a new API server
func New(sess *session.Session, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		sess:   sess,
		opts:   opts,
		router: chi.NewRouter(),
		log:    applog.WithComponent("server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/status", s.handleStatus)
		r.Post("/commands", s.handleCommand)
		r.Post("/export", s.handleExport)
	})
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.String()})
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sess.View())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sess.Status())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd session.Command
	if err := decodeJSON(w, r, &cmd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if cmd.Type == session.CmdExport {
		respondError(w, http.StatusBadRequest, "use /api/export")
		return
	}
	res, err := s.sess.Dispatch(r.Context(), cmd)
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ro := domain.DefaultRenderOptions()
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &ro); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid render options")
			return
		}
	}
	exp, err := s.sess.Export(r.Context(), ro)
	switch {
	case errors.Is(err, session.ErrEmptySelection):
		respondError(w, http.StatusUnprocessableEntity, session.Notice(err))
		return
	case errors.Is(err, session.ErrBusy):
		respondError(w, http.StatusConflict, session.Notice(err))
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, session.Notice(err))
		return
	}
	w.Header().Set("Content-Type", exp.Format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		s.log.Info("server stopped")
		return nil
	}
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
