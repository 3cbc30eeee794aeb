package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
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
	g := api.Group("", auth.RequireRole("admin", "clerk"))
	g.GET("/billing", h.List)
	g.GET("/billing/patient/:patientID", h.ByPatient)
	g.GET("/billing/patient/:patientID/summary", h.UnpaidSummary)
	g.POST("/billing", h.Charge)
	g.POST("/billing/:id/pay", h.MarkPaid)
	g.POST("/billing/patient/:patientID/settle", h.SettlePatient)
}

type chargeRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	Description string    `json:"item_description"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
}

func (h *Handler) Charge(c echo.Context) error {
	var req chargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.Charge(c.Request().Context(), req.PatientID, req.Description, req.Quantity, req.UnitPrice)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Entry{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UnpaidSummary(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	sum, err := h.svc.UnpaidSummary(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) MarkPaid(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.MarkPaid(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) SettlePatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	n, err := h.svc.SettlePatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"settled": n})
}
