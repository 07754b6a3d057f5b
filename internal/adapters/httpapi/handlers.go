package httpapi

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/streamplan/internal/buildinfo"
	"github.com/Guilhem-Bonnet/streamplan/internal/httpjson"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.WithCatalog(s.planner.Catalog().Fingerprint()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, s.planner.Stats())
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}
