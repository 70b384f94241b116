package server

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/findigest/internal/common"
	"github.com/bobmcallan/findigest/internal/models"
	"github.com/bobmcallan/findigest/internal/services/analysis"
)

var validate = validator.New()

// handleAnalyze handles POST /analyze and /api/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AnalyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Company = strings.TrimSpace(req.Company)
	if err := validate.Struct(req); err != nil {
		_, msg := analysis.StatusAndMessage(analysis.ErrCompanyNameRequired)
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	report, err := s.app.AnalysisService.Analyze(r.Context(), req.Company)
	if err != nil {
		status, msg := analysis.StatusAndMessage(err)
		logger := s.logger.WithCorrelationID(common.CorrelationIDFromContext(r.Context()))
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("company", req.Company).Msg("Analysis failed")
		} else {
			logger.Info().Str("company", req.Company).Int("status", status).Str("error", err.Error()).Msg("Analysis rejected")
		}
		WriteError(w, status, msg)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}
