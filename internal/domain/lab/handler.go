package lab

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/workflow"
	"github.com/hms/hms/pkg/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	catalogGroup := api.Group("", auth.RequireRole("admin", "lab_tech", "doctor"))
	catalogGroup.GET("/labs/tests", h.ListTests)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/labs/tests", h.CreateTest)
	adminGroup.DELETE("/labs/tests/:id", h.DeleteTest)

	labGroup := api.Group("", auth.RequireRole("admin", "lab_tech", "nurse", "doctor"))
	labGroup.GET("/labs/orders", h.Queue)
	labGroup.GET("/labs/orders/:id", h.GetOrder)

	techGroup := api.Group("", auth.RequireRole("admin", "lab_tech", "nurse"))
	techGroup.POST("/labs/orders/:id/collect", h.CollectSample)

	resultGroup := api.Group("", auth.RequireRole("admin", "lab_tech"))
	resultGroup.POST("/labs/orders/:id/result", h.SubmitResult)
}

type testRequest struct {
	Name       string  `json:"test_name"`
	Department string  `json:"department"`
	UnitPrice  float64 `json:"unit_price"`
}

func (h *Handler) CreateTest(c echo.Context) error {
	var req testRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.CreateTest(c.Request().Context(), req.Name, req.Department, req.UnitPrice)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTests(c echo.Context) error {
	items, err := h.svc.ListTests(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Test{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTest(c.Request().Context(), id); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Queue accepts ?status=Pending Sample,Sample Collected; default is all
// active orders.
func (h *Handler) Queue(c echo.Context) error {
	var statuses []workflow.Status
	if raw := c.QueryParam("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, workflow.Status(strings.TrimSpace(s)))
		}
	}
	items, err := h.svc.Queue(c.Request().Context(), statuses)
	if err != nil {
		return httperr.Map(err)
	}
	if items == nil {
		items = []*Order{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) CollectSample(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	o, err := h.svc.CollectSample(ctx, id, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, o)
}

type resultRequest struct {
	Result string `json:"result"`
}

func (h *Handler) SubmitResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req resultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	o, err := h.svc.SubmitResult(ctx, id, req.Result, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, o)
}
