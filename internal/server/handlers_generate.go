package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/thinkscotty/postcraft/internal/ai"
	"github.com/thinkscotty/postcraft/internal/models"
)

const (
	maxRequestBytes  = 1 << 20
	errParseFail     = "JSON_PARSE_FAIL"
	msgMissingFields = "Missing fields"
	msgMissingKey    = "Gemini API key missing"
)

// diagnosticBody is returned when no strategy could extract JSON from the
// model reply.
type diagnosticBody struct {
	Error          string          `json:"error"`
	Fallback       bool            `json:"fallback"`
	ModelAttempted string          `json:"modelAttempted"`
	Raw            string          `json:"raw"`
	Sliced         *string         `json:"sliced"`
	Sanitized      string          `json:"sanitized"`
	ModelResponse  json.RawMessage `json:"modelResponse"`
}

// handleGenerate never answers with a 5xx: apart from missing fields (400)
// every failure is reported as a 200 with "fallback": true.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Generate handler panic", "error", p, "request_id", requestID(r.Context()))
			softFallback(w, fmt.Sprint(p))
		}
	}()

	var req models.GenerationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An unreadable body is treated as an empty form.
		req = models.GenerationRequest{}
	}

	res, err := s.ai.Generate(r.Context(), req)
	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		slog.Warn("Generate called without a Gemini API key")
	case err != nil && !errors.Is(err, models.ErrMissingFields):
		slog.Error("Generation failed", "error", err, "request_id", requestID(r.Context()))
	}

	status, body := ResponseBody(res, err)
	writeJSON(w, status, body)
}

// ResponseBody renders the result of ai.Client.Generate as the generate
// route's status code and JSON body.
func ResponseBody(res *ai.Result, err error) (int, []byte) {
	switch {
	case errors.Is(err, models.ErrMissingFields):
		return http.StatusBadRequest, mustMarshal(map[string]string{"error": msgMissingFields})
	case errors.Is(err, ai.ErrMissingAPIKey):
		return http.StatusOK, mustMarshal(fallbackBody{Error: msgMissingKey, Fallback: true})
	case err != nil:
		return http.StatusOK, mustMarshal(fallbackBody{Error: err.Error(), Fallback: true})
	}

	if !res.Outcome.OK {
		return http.StatusOK, mustMarshal(diagnosticBody{
			Error:          errParseFail,
			Fallback:       true,
			ModelAttempted: res.Model,
			Raw:            res.Outcome.Raw,
			Sliced:         res.Outcome.Sliced,
			Sanitized:      res.Outcome.Sanitized,
			ModelResponse:  res.Upstream,
		})
	}

	body, err := spread(res.Outcome.Value)
	if err != nil {
		slog.Error("Failed to build response", "error", err)
		return http.StatusOK, mustMarshal(fallbackBody{Error: err.Error(), Fallback: true})
	}
	return http.StatusOK, body
}
