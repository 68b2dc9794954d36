package remote

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// MaxRequestSize bounds the request body accepted by Handler.
const MaxRequestSize = 1 << 20

// corsHeaders are sent on every response, including preflight.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// Request is the body accepted by the convert-latex endpoint.
type Request struct {
	Latex   string  `json:"latex"`
	Options Options `json:"options"`
}

// Response is the body returned by the convert-latex endpoint. Failed
// requests set Error and, when available, Details.
type Response struct {
	HTML    string `json:"html,omitempty"`
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Handler serves a Converter as the convert-latex endpoint.
type Handler struct {
	conv   Converter
	logger *slog.Logger
}

var _ http.Handler = (*Handler)(nil)

// NewHandler creates a Handler. A nil logger discards log output.
func NewHandler(conv Converter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{conv: conv, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}

	switch r.Method {
	case http.MethodOptions:
		_, _ = io.WriteString(w, "ok")
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "Method not allowed"})
		return
	}

	start := time.Now()
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestSize)).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, Response{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if req.Latex == "" {
		writeJSON(w, http.StatusBadRequest, Response{Error: ErrEmptyLatex.Error()})
		return
	}
	if err := req.Options.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "Invalid options", Details: err.Error()})
		return
	}

	html, err := h.conv.Convert(r.Context(), req.Latex, req.Options)
	if err != nil {
		var perr *PandocError
		if errors.As(err, &perr) {
			h.logger.Error("pandoc error", "stderr", perr.Stderr)
			writeJSON(w, http.StatusInternalServerError, Response{Error: "Pandoc conversion failed", Details: perr.Stderr})
			return
		}
		h.logger.Error("convert-latex failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Error: "Internal server error", Details: err.Error()})
		return
	}

	h.logger.Debug("converted", "bytes", len(req.Latex), "duration", time.Since(start))
	writeJSON(w, http.StatusOK, Response{HTML: html, Success: true})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
