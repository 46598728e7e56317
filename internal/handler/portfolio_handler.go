package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"folioscan/internal/export"
	"folioscan/internal/service"
)

// PortfolioHandler handles screenshot extraction and portfolio validation endpoints.
type PortfolioHandler struct {
	portfolioService service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// ValidateRequest is the body of POST /api/v1/portfolio/validate.
type ValidateRequest struct {
	Portfolio map[string]json.RawMessage `json:"portfolio" binding:"required"`
}

// Extract handles POST /api/v1/portfolio/extract
func (h *PortfolioHandler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form with an images field is required")
		return
	}

	headers := form.File["images"]
	files := make([]service.ImageFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file "+fh.Filename)
			return
		}
		opened = append(opened, f)
		files = append(files, service.ImageFile{Name: fh.Filename, Size: fh.Size, Reader: f})
	}

	resp, err := h.portfolioService.Extract(c.Request.Context(), service.ExtractRequest{
		Broker: c.PostForm("broker"),
		Files:  files,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// Validate handles POST /api/v1/portfolio/validate
// Every verdict, including invalid, is a 200; only a malformed body is a 400.
func (h *PortfolioHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PORTFOLIO", "portfolio must be an object of ticker to weight")
		return
	}
	RespondOK(c, h.portfolioService.Validate(c.Request.Context(), req.Portfolio))
}

// ListRuns handles GET /api/v1/portfolio/runs
func (h *PortfolioHandler) ListRuns(c *gin.Context) {
	offset, limit := parsePagination(c)
	runs, total, err := h.portfolioService.ListRuns(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetRun handles GET /api/v1/portfolio/runs/:id
func (h *PortfolioHandler) GetRun(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	run, err := h.portfolioService.GetRun(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}

// ExportRun handles GET /api/v1/portfolio/runs/:id/export?format=csv|xlsx
func (h *PortfolioHandler) ExportRun(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.portfolioService.Export(c.Request.Context(), id, format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(id.String(), format)+`"`)
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return uuid.Nil, false
	}
	return id, true
}
