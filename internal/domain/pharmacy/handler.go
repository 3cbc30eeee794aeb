package pharmacy

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "pharmacist", "doctor"))
	readGroup.GET("/pharmacy/formulary", h.ListDrugs)
	readGroup.GET("/pharmacy/formulary/low-stock", h.LowStock)
	readGroup.GET("/pharmacy/prescriptions", h.PendingQueue)
	readGroup.GET("/pharmacy/prescriptions/:id", h.GetPrescription)

	pharmacistGroup := api.Group("", auth.RequireRole("admin", "pharmacist"))
	pharmacistGroup.POST("/pharmacy/formulary", h.CreateDrug)
	pharmacistGroup.DELETE("/pharmacy/formulary/:id", h.DeleteDrug)
	pharmacistGroup.POST("/pharmacy/formulary/:id/restock", h.Restock)
	pharmacistGroup.POST("/pharmacy/prescriptions/:id/dispense", h.Dispense)
	pharmacistGroup.POST("/pharmacy/interactions", h.CheckInteractions)
}

type drugRequest struct {
	Name              string  `json:"drug_name"`
	BrandName         string  `json:"brand_name"`
	DosageForm        string  `json:"dosage_form"`
	StockLevel        int     `json:"stock_level"`
	UnitPrice         float64 `json:"unit_price"`
	LowStockThreshold int     `json:"low_stock_threshold"`
}

func (h *Handler) CreateDrug(c echo.Context) error {
	var req drugRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.CreateDrug(c.Request().Context(), req.Name, req.BrandName, req.DosageForm,
		req.StockLevel, req.UnitPrice, req.LowStockThreshold)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListDrugs(c echo.Context) error {
	items, err := h.svc.ListDrugs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Drug{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.svc.LowStockDrugs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeleteDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDrug(c.Request().Context(), id); err != nil {
		return httperr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Restock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) PendingQueue(c echo.Context) error {
	items, err := h.svc.PendingQueue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Prescription{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPrescription(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, p)
}

type dispenseRequest struct {
	FormularyID uuid.UUID `json:"formulary_id"`
	Quantity    int       `json:"quantity"`
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.Dispense(ctx, id, req.FormularyID, req.Quantity, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, p)
}

type interactionsRequest struct {
	Medications []string `json:"medications"`
}

func (h *Handler) CheckInteractions(c echo.Context) error {
	var req interactionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result := h.svc.CheckInteractions(c.Request().Context(), req.Medications)
	return c.JSON(http.StatusOK, result)
}
