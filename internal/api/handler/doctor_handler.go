package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

type DoctorHandler struct {
	caseService ports.CaseService
}

func NewDoctorHandler(caseService ports.CaseService) *DoctorHandler {
	return &DoctorHandler{caseService: caseService}
}

type opinionRequest struct {
	Opinion string `json:"opinion" validate:"required"`
}

// AvailableCases lists unclaimed cases waiting for a doctor.
//
// @Summary      List available cases
// @Tags         doctor
// @Produce      json
// @Success      200  {object}  caseListResponse
// @Security     BearerAuth
// @Router       /api/doctor/cases [get]
func (h *DoctorHandler) AvailableCases(c echo.Context) error {
	cases, err := h.caseService.ListSubmitted(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, caseListResponse{Cases: cases})
}

// MyCases lists cases assigned to the authenticated doctor.
//
// @Summary      List assigned cases
// @Tags         doctor
// @Produce      json
// @Success      200  {object}  caseListResponse
// @Security     BearerAuth
// @Router       /api/doctor/my-cases [get]
func (h *DoctorHandler) MyCases(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	cases, err := h.caseService.ListForDoctor(c.Request().Context(), ident.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, caseListResponse{Cases: cases})
}

// Accept claims a submitted case for the authenticated doctor. When two
// doctors race for the same case exactly one wins; the loser gets a 409.
//
// @Summary      Accept a case
// @Tags         doctor
// @Produce      json
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  caseResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/doctor/cases/{id}/accept [post]
func (h *DoctorHandler) Accept(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	caze, err := h.caseService.Accept(c.Request().Context(), c.Param("id"), ident.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, caseResponse{
		Message: "Case accepted",
		Case:    *caze,
	})
}

// SubmitOpinion records the assigned doctor's opinion and completes the case.
//
// @Summary      Submit an opinion
// @Tags         doctor
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Case ID"
// @Param        body  body      opinionRequest  true  "Opinion text"
// @Success      200  {object}  caseResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/doctor/cases/{id}/opinion [post]
func (h *DoctorHandler) SubmitOpinion(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req opinionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caze, err := h.caseService.SubmitOpinion(c.Request().Context(), c.Param("id"), ident.ID, req.Opinion)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, caseResponse{
		Message: "Opinion submitted",
		Case:    *caze,
	})
}
