package consultation

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
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	readGroup.GET("/consultations", h.History)
	readGroup.GET("/consultations/:id", h.Get)
	readGroup.GET("/consultations/patient/:patientID", h.ByPatient)

	doctorGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	doctorGroup.POST("/consultations", h.Create)
}

type createRequest struct {
	TriageID      uuid.UUID `json:"triage_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	Notes         string    `json:"notes"`
	Prescriptions []RxLine  `json:"prescriptions"`
	LabTests      []string  `json:"lab_tests"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	result, err := h.svc.Create(ctx, req.TriageID, req.DoctorID, req.Notes,
		req.Prescriptions, req.LabTests, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, result)
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
		items = []*Consultation{}
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
