package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/maxpert/querygate/canonical"
	"github.com/maxpert/querygate/classifier"
)

// maxBodyBytes bounds request bodies on the classification endpoints.
const maxBodyBytes = 1 << 20

// AdminHandlers serves the classification API.
type AdminHandlers struct {
	pool  *SessionPool
	stats *classifier.Stats
}

func NewAdminHandlers(pool *SessionPool, stats *classifier.Stats) *AdminHandlers {
	if stats == nil {
		stats = classifier.DefaultStats
	}
	return &AdminHandlers{
		pool:  pool,
		stats: stats,
	}
}

type classifyRequest struct {
	SQL      string `json:"sql"`
	Collect  string `json:"collect"`
	Mode     string `json:"mode"`
	Prepared bool   `json:"prepared"`
}

type classifyResponse struct {
	classifier.Report
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

type canonicalResponse struct {
	Canonical   string `json:"canonical"`
	Fingerprint string `json:"fingerprint"`
}

func (h *AdminHandlers) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SQL == "" {
		writeErrorResponse(w, http.StatusBadRequest, "sql is required")
		return
	}
	mode := h.pool.SQLMode()
	if req.Mode != "" {
		var ok bool
		if mode, ok = classifier.ParseSQLMode(req.Mode); !ok {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid sql mode: %s", req.Mode))
			return
		}
	}
	collect := classifier.CollectAll
	if req.Collect != "" {
		collect = classifier.ParseCollect(req.Collect)
	}

	s, err := h.pool.Get()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create classifier session")
		writeErrorResponse(w, http.StatusInternalServerError, "classifier unavailable")
		return
	}
	defer h.pool.Put(s)
	s.SetSQLMode(mode)

	stmt := classifier.NewStatement(req.SQL)
	if req.Prepared {
		stmt = classifier.NewPreparedStatement(req.SQL)
	}

	resp := classifyResponse{Backend: s.Backend()}
	if _, err := s.Classify(stmt, collect); err != nil {
		resp.Error = err.Error()
	}
	resp.Report = classifier.Describe(stmt.Result())
	writeJSONResponse(w, resp)
}

func (h *AdminHandlers) handleCanonical(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	canon := canonical.Canonicalize(req.SQL)
	if req.Prepared {
		canon = canonical.CanonicalizePrepared(req.SQL)
	}
	writeJSONResponse(w, canonicalResponse{
		Canonical:   canon,
		Fingerprint: strconv.FormatUint(canonical.Fingerprint(canon), 16),
	})
}

func (h *AdminHandlers) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, h.stats.Snapshot())
}

type backendsResponse struct {
	Backends []string `json:"backends"`
	Active   string   `json:"active"`
}

func (h *AdminHandlers) handleBackends(w http.ResponseWriter, r *http.Request) {
	s, err := h.pool.Get()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create classifier session")
		writeErrorResponse(w, http.StatusInternalServerError, "classifier unavailable")
		return
	}
	active := s.Backend()
	h.pool.Put(s)

	writeJSONResponse(w, backendsResponse{Backends: classifier.Backends(), Active: active})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSONResponse writes a successful JSON response
func writeJSONResponse(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"data": data,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error JSON response
func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := map[string]interface{}{
		"error": message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
	}
}
