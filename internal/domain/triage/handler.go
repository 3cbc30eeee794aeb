package triage

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/classify"
	"github.com/hms/hms/internal/platform/workflow"
	"github.com/hms/hms/pkg/httperr"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	readGroup.GET("/triage/queue", h.Queue)
	readGroup.GET("/triage", h.History)
	readGroup.GET("/triage/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole("admin", "nurse"))
	writeGroup.POST("/triage", h.Create)

	clinicalGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	clinicalGroup.POST("/triage/:id/assign", h.Assign)
	clinicalGroup.POST("/triage/:id/status", h.Transition)
}

type createRequest struct {
	PatientID      uuid.UUID       `json:"patient_id"`
	Symptoms       string          `json:"symptoms"`
	MedicalHistory string          `json:"medical_history"`
	Vitals         classify.Vitals `json:"vitals"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	e, err := h.svc.Create(ctx, req.PatientID, auth.UserIDFromContext(ctx), auth.UserNameFromContext(ctx),
		req.Symptoms, req.MedicalHistory, req.Vitals)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) Queue(c echo.Context) error {
	items, err := h.svc.Queue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Entry{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) History(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, e)
}

type assignRequest struct {
	DoctorID uuid.UUID `json:"doctor_id"`
}

func (h *Handler) Assign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	e, err := h.svc.Assign(ctx, id, req.DoctorID, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, e)
}

type transitionRequest struct {
	Status workflow.Status `json:"status"`
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	e, err := h.svc.Transition(ctx, id, req.Status, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, e)
}
