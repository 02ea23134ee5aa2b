package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/usecase"
)

// maxRequestBody caps inbound request bodies.
const maxRequestBody = 1 * 1024 * 1024 // 1 MB

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ValidateRequest is the JSON body for POST /v1/validate.
type ValidateRequest struct {
	ContentID   string             `json:"content_id,omitempty"`
	Content     string             `json:"content"`
	Platform    domain.Platform    `json:"platform,omitempty"`
	ContentType domain.ContentType `json:"content_type,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.pipeline.Validate(r.Context(), req.ContentID, req.Content, req.Platform, req.ContentType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DiscloseRequest is the JSON body for POST /v1/disclose.
type DiscloseRequest struct {
	Content     string             `json:"content"`
	ContentType domain.ContentType `json:"content_type,omitempty"`
	// Position, Enabled, and CustomText override the configured
	// injection defaults when Position is set.
	Position   string `json:"position,omitempty"`
	Enabled    *bool  `json:"enabled,omitempty"`
	CustomText string `json:"custom_text,omitempty"`
}

// DiscloseResponse is the JSON body returned by POST /v1/disclose.
type DiscloseResponse struct {
	Content string `json:"content"`
}

func (s *Server) handleDisclose(w http.ResponseWriter, r *http.Request) {
	var req DiscloseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var injectCfg *compliance.InjectConfig
	if req.Position != "" || req.Enabled != nil || req.CustomText != "" {
		injectCfg = &compliance.InjectConfig{
			Enabled:    true,
			Position:   compliance.PositionBottom,
			CustomText: req.CustomText,
		}
		if req.Enabled != nil {
			injectCfg.Enabled = *req.Enabled
		}
		switch req.Position {
		case "top":
			injectCfg.Position = compliance.PositionTop
		case "both":
			injectCfg.Position = compliance.PositionBoth
		}
	}

	content, err := s.pipeline.Disclose(req.Content, req.ContentType, injectCfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DiscloseResponse{Content: content})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req usecase.PipelineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.reports.BuildReport(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := s.ledger.CostSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summary == nil {
		summary = []usecase.ProviderCost{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAuthInvalid):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrRateLimit), errors.Is(err, domain.ErrProviderError):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Code:  string(domain.ErrorCodeOf(err)),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "malformed JSON body: " + err.Error(),
			Code:  string(domain.ErrorCodeOf(domain.ErrInvalidInput)),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := s.products.SearchProducts(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}
