package emergency

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
	readGroup.GET("/emergency/queue", h.Queue)
	readGroup.GET("/emergency/cases", h.History)
	readGroup.GET("/emergency/cases/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	writeGroup.POST("/emergency/cases", h.Register)
	writeGroup.POST("/emergency/cases/:id/assign", h.Assign)
	writeGroup.POST("/emergency/cases/:id/status", h.Transition)
	writeGroup.POST("/emergency/cases/:id/location", h.SetLocation)
	writeGroup.POST("/emergency/cases/:id/notes", h.AddNote)
	writeGroup.POST("/emergency/cases/:id/orders", h.AddOrder)

	doctorGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	doctorGroup.POST("/emergency/cases/:id/disposition", h.Dispose)
}

type registerRequest struct {
	PatientID       uuid.UUID       `json:"patient_id"`
	PreHospitalInfo string          `json:"pre_hospital_info"`
	Symptoms        string          `json:"presenting_symptoms"`
	Vitals          classify.Vitals `json:"initial_vitals"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	created, err := h.svc.Register(ctx, req.PatientID, auth.UserIDFromContext(ctx),
		auth.UserNameFromContext(ctx), req.PreHospitalInfo, req.Symptoms, req.Vitals)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Queue(c echo.Context) error {
	items, err := h.svc.Queue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Case{}
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
	cs, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, cs)
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
	cs, err := h.svc.Assign(ctx, id, req.DoctorID, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, cs)
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
	cs, err := h.svc.Transition(ctx, id, req.Status, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type locationRequest struct {
	Location string `json:"location"`
}

func (h *Handler) SetLocation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs, err := h.svc.SetLocation(c.Request().Context(), id, req.Location)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, cs)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (h *Handler) AddNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	cs, err := h.svc.AddNote(ctx, id, req.Text, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, cs)
}

func (h *Handler) AddOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	cs, err := h.svc.AddOrder(ctx, id, req.Text, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, cs)
}

type dispositionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

func (h *Handler) Dispose(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dispositionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	cs, err := h.svc.Dispose(ctx, id, req.Decision, req.Notes, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, cs)
}
