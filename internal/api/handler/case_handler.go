package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
	"github.com/medbuddy/second-opinion-api/internal/infrastructure/storage"
)

const maxDocumentsPerCase = 5

// DocumentSaver persists an uploaded file and returns its stored reference.
type DocumentSaver interface {
	Save(fh *multipart.FileHeader) (domain.Document, error)
}

type CaseHandler struct {
	caseService ports.CaseService
	documents   DocumentSaver
	logger      zerolog.Logger
}

func NewCaseHandler(caseService ports.CaseService, documents DocumentSaver, logger zerolog.Logger) *CaseHandler {
	return &CaseHandler{caseService: caseService, documents: documents, logger: logger}
}

type submitCaseRequest struct {
	Title             string `json:"title"       validate:"required"`
	Description       string `json:"description" validate:"required"`
	ExistingDiagnosis string `json:"existingDiagnosis"`
	Questions         string `json:"questions"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// Submit opens a new case for the authenticated patient. Accepts
// multipart/form-data so medical documents can ride along with the form
// fields; plain JSON submissions without attachments also work.
//
// @Summary      Submit a new case
// @Tags         cases
// @Accept       mpfd
// @Produce      json
// @Param        title        formData  string  true   "Case title"
// @Param        description  formData  string  true   "Case description"
// @Param        documents    formData  file    false  "Medical documents (max 5)"
// @Success      201  {object}  caseResponse
// @Failure      400  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/cases [post]
func (h *CaseHandler) Submit(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	input := ports.SubmitCaseInput{OwnerID: ident.ID}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		var req submitCaseRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		input.Title = req.Title
		input.Description = req.Description
		input.ExistingDiagnosis = req.ExistingDiagnosis
		input.Questions = req.Questions
		input.PreferredLanguage = req.PreferredLanguage
	} else {
		input.Title = c.FormValue("title")
		input.Description = c.FormValue("description")
		input.ExistingDiagnosis = c.FormValue("existingDiagnosis")
		input.Questions = c.FormValue("questions")
		input.PreferredLanguage = c.FormValue("preferredLanguage")

		docs, err := h.saveDocuments(c)
		if err != nil {
			return err
		}
		input.Documents = docs
	}

	caze, err := h.caseService.Submit(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, caseResponse{
		Message: "Case submitted successfully",
		Case:    *caze,
	})
}

func (h *CaseHandler) saveDocuments(c echo.Context) ([]domain.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all: a JSON submission without attachments.
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	files := form.File["documents"]
	if len(files) > maxDocumentsPerCase {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "too many documents: maximum is 5")
	}

	docs := make([]domain.Document, 0, len(files))
	for _, fh := range files {
		doc, err := h.documents.Save(fh)
		if err != nil {
			if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrFileTypeNotAllowed) {
				return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			h.logger.Error().Err(err).Str("filename", fh.Filename).Msg("storing uploaded document")
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// List returns the authenticated patient's cases, newest first.
//
// @Summary      List own cases
// @Tags         cases
// @Produce      json
// @Success      200  {object}  caseListResponse
// @Security     BearerAuth
// @Router       /api/cases [get]
func (h *CaseHandler) List(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	cases, err := h.caseService.ListForOwner(c.Request().Context(), ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, caseListResponse{Cases: cases})
}

// Get returns a single case, subject to the read authorization rule.
//
// @Summary      Get a case
// @Tags         cases
// @Produce      json
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  caseResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/cases/{id} [get]
func (h *CaseHandler) Get(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	caze, err := h.caseService.Get(c.Request().Context(), c.Param("id"), ident)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, caseResponse{Case: *caze})
}
