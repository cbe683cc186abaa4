package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/leapstack-labs/sqlprism/pkg/format"
)

// transformRequest is the body of the format and highlight endpoints.
type transformRequest struct {
	SQL    string `json:"sql"`
	Indent string `json:"indent,omitempty"`
}

// transformResponse is the envelope returned by the transform endpoints.
type transformResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

type vocabularyResponse struct {
	Keywords  []string `json:"keywords"`
	Functions []string `json:"functions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVocabulary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vocabularyResponse{
		Keywords:  s.vocab.Keywords(),
		Functions: s.vocab.Functions(),
	})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	indent := req.Indent
	if indent == "" {
		indent = s.indent
	}
	if strings.Trim(indent, " \t") != "" {
		writeJSON(w, http.StatusBadRequest, transformResponse{Error: "indent must contain only spaces and tabs"})
		return
	}

	f := format.New(format.WithIndent(indent), format.WithVocabulary(s.vocab))
	s.transform(w, r, "format\x00"+indent, req.SQL, f.Format)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.transform(w, r, "highlight", req.SQL, s.highlighter.Highlight)
}

// transform runs fn over sql, serving repeated requests from the result
// cache. Failures are reported as 422 with the failure message.
func (s *Server) transform(w http.ResponseWriter, r *http.Request, op, sql string, fn func(string) (string, error)) {
	cacheable := len(sql) <= maxCachedSQLBytes
	key := ""
	if cacheable {
		key = resultKey(op, sql)
		if result, ok := s.results.Get(key); ok {
			writeJSON(w, http.StatusOK, transformResponse{Success: true, Result: result})
			return
		}
	}

	result, err := fn(sql)
	if err != nil {
		s.logger.Warn("transform failed",
			"op", strings.SplitN(op, "\x00", 2)[0],
			"request_id", RequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusUnprocessableEntity, transformResponse{Error: err.Error()})
		return
	}

	if cacheable {
		s.results.Set(key, result)
	}
	writeJSON(w, http.StatusOK, transformResponse{Success: true, Result: result})
}

// resultKey is the cache key for op over sql: a SHA-256 digest, so keys
// stay small whatever the input size.
func resultKey(op, sql string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, op)
	_, _ = io.WriteString(h, "\x00")
	_, _ = io.WriteString(h, sql)
	return hex.EncodeToString(h.Sum(nil))
}

// decode reads a transform request, writing a 400 or 413 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (transformRequest, bool) {
	var req transformRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, transformResponse{Error: "request body too large"})
			return req, false
		}
		writeJSON(w, http.StatusBadRequest, transformResponse{Error: "invalid JSON: " + err.Error()})
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
