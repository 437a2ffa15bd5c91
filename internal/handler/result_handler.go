package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/service"
)

// ResultHandler serves consolidated results, exports and the run ledger.
type ResultHandler struct {
	resultService service.ResultService
	windowSize    int
}

// NewResultHandler creates a new ResultHandler. windowSize is the default window length.
func NewResultHandler(resultService service.ResultService, windowSize int) *ResultHandler {
	return &ResultHandler{resultService: resultService, windowSize: windowSize}
}

// RunDetail is a batch run together with its per-bank outcomes.
type RunDetail struct {
	Run   *domain.BatchRun      `json:"run"`
	Items []domain.BatchRunItem `json:"items"`
}

// Get handles GET /api/v1/results/:quarter
func (h *ResultHandler) Get(c *gin.Context) {
	result, err := h.resultService.Get(c.Request.Context(), c.Param("quarter"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Tables handles GET /api/v1/results/:quarter/tables
func (h *ResultHandler) Tables(c *gin.Context) {
	tables, err := h.resultService.Tables(c.Request.Context(), c.Param("quarter"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tables)
}

// Export handles GET /api/v1/results/:quarter/export?format=xlsx|csv
func (h *ResultHandler) Export(c *gin.Context) {
	file, err := h.resultService.Export(c.Request.Context(), c.Param("quarter"), c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// maxWindowCount caps ?count= on the window endpoint.
const maxWindowCount = 40

// Window handles GET /api/v1/quarters/:quarter/window?count=N
func (h *ResultHandler) Window(c *gin.Context) {
	count := h.windowSize
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid 'count': must be an integer")
			return
		}
		if n < 1 || n > maxWindowCount {
			RespondError(c, http.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid 'count': must be between 1 and %d", maxWindowCount))
			return
		}
		count = n
	}

	labels, err := h.resultService.Window(c.Param("quarter"), count)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, labels)
}

// ListRuns handles GET /api/v1/runs?quarter=&offset=&limit=
func (h *ResultHandler) ListRuns(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}

	runs, total, err := h.resultService.ListRuns(c.Request.Context(), c.Query("quarter"), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetRun handles GET /api/v1/runs/:id
func (h *ResultHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return
	}

	run, items, err := h.resultService.GetRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, RunDetail{Run: run, Items: items})
}
