package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/service"
)

// AnalysisHandler handles batch analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// AnalyzeRequest is the request body for starting or consolidating a batch.
type AnalyzeRequest struct {
	BankNames []string `json:"bank_names" binding:"required,min=1"`
	Quarter   string   `json:"quarter" binding:"required"`
}

func (r AnalyzeRequest) toDomain() domain.AnalyzeRequest {
	return domain.AnalyzeRequest{Banks: r.BankNames, Quarter: r.Quarter}
}

// Analyze handles POST /api/v1/analyses
// Runs extraction for every bank with an eligible document and consolidates the results.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	report, err := h.analysisService.Analyze(c.Request.Context(), req.toDomain())
	if err != nil {
		HandleError(c, err)
		return
	}
	respondReport(c, report)
}

// Consolidate handles POST /api/v1/analyses/consolidate
// Rebuilds the consolidated result from per-bank files already on disk.
func (h *AnalysisHandler) Consolidate(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	report, err := h.analysisService.Consolidate(c.Request.Context(), req.toDomain())
	if err != nil {
		HandleError(c, err)
		return
	}
	respondReport(c, report)
}

// respondReport sends the report, using 422 when no requested bank had a document.
func respondReport(c *gin.Context, report *domain.AnalysisReport) {
	if report.Status == domain.RunStatusNoDocuments {
		_, code, msg := MapDomainError(domain.ErrNoEligibleDocuments)
		c.JSON(http.StatusUnprocessableEntity, APIResponse{
			Success: false,
			Data:    report,
			Error:   &APIError{Code: code, Message: msg},
		})
		return
	}
	RespondOK(c, report)
}
