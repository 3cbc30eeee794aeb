package complaint

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
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
	staffGroup := api.Group("", auth.RequireRole("admin", "clerk", "nurse", "doctor"))
	staffGroup.POST("/complaints", h.Create)
	staffGroup.GET("/complaints/queue", h.Queue)
	staffGroup.GET("/complaints", h.History)
	staffGroup.GET("/complaints/:id", h.Get)
	staffGroup.POST("/complaints/:id/updates", h.AddUpdate)

	resolveGroup := api.Group("", auth.RequireRole("admin", "clerk"))
	resolveGroup.POST("/complaints/:id/assign", h.Assign)
	resolveGroup.POST("/complaints/:id/status", h.Transition)
}

type createRequest struct {
	PatientID     uuid.UUID `json:"patient_id"`
	Text          string    `json:"complaint_text"`
	ChannelSource string    `json:"channel_source"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	item, err := h.svc.Create(ctx, req.PatientID, req.Text, req.ChannelSource, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) Queue(c echo.Context) error {
	items, err := h.svc.Queue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Complaint{}
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
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, item)
}

type updateRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) AddUpdate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	item, err := h.svc.AddUpdate(ctx, id, auth.UserNameFromContext(ctx), req.Comment)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, item)
}

type assignRequest struct {
	AssignedTo string `json:"assigned_to"`
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
	item, err := h.svc.Assign(ctx, id, req.AssignedTo, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, item)
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
	item, err := h.svc.Transition(ctx, id, req.Status, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, item)
}
