package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/pratik-mahalle/docbrief/internal/api/dto"
	"github.com/pratik-mahalle/docbrief/internal/extract"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
	"github.com/pratik-mahalle/docbrief/internal/pkg/validator"
	"github.com/pratik-mahalle/docbrief/internal/services"
)

// DocumentHandler handles analysis and extraction requests
type DocumentHandler struct {
	summaries     *services.SummaryService
	extractor     *extract.Extractor
	maxUploadSize int64
	logger        *logger.Logger
	validator     *validator.Validator
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	summaries *services.SummaryService,
	extractor *extract.Extractor,
	maxUploadSize int64,
	log *logger.Logger,
	val *validator.Validator,
) *DocumentHandler {
	return &DocumentHandler{
		summaries:     summaries,
		extractor:     extractor,
		maxUploadSize: maxUploadSize,
		logger:        log,
		validator:     val,
	}
}

// Analyze summarizes document text
// @Summary Summarize document text
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Document text"
// @Success 200 {object} dto.AnalyzeResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Failure 402 {object} utils.ErrorResponse "Subscription required"
// @Failure 429 {object} utils.ErrorResponse "Rate limited"
// @Failure 502 {object} utils.ErrorResponse "Summarizer failed"
// @Router /api/v1/analyze [post]
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.validator.Check(req); err != nil {
		utils.WriteError(w, err)
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), req.Text)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.AnalyzeResponse{Summary: summary})
}

// Extract returns the text of an uploaded PDF
// @Summary Extract PDF text
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF document"
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid upload"
// @Failure 422 {object} utils.ErrorResponse "Unreadable document"
// @Router /api/v1/extract [post]
func (h *DocumentHandler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			utils.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, errors.ErrCodeBadRequest, "File is too large")
			return
		}
		utils.WriteError(w, errors.BadRequest("Invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Failed to read upload"))
		return
	}

	res, err := h.extractor.Extract(r.Context(), data)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		h.logger.WarnWithErr(err, "PDF extraction failed")
		utils.WriteErrorMessage(w, http.StatusUnprocessableEntity, errors.ErrCodeBadRequest, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.ExtractResponse{
		Text:        res.Text,
		Pages:       res.Pages,
		FailedPages: res.FailedPages,
	})
}
