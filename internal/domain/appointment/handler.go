package appointment

import (
	"net/http"
	"time"

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
	deskGroup := api.Group("", auth.RequireRole("admin", "clerk", "nurse", "doctor"))
	deskGroup.POST("/appointments", h.Book)
	deskGroup.GET("/appointments/queue", h.Queue)
	deskGroup.GET("/appointments", h.History)
	deskGroup.GET("/appointments/slots", h.Slots)
	deskGroup.GET("/appointments/:id", h.Get)
	deskGroup.GET("/appointments/patient/:patientID", h.ForPatient)
	deskGroup.POST("/appointments/:id/check-in", h.CheckIn)
	deskGroup.POST("/appointments/:id/status", h.Transition)
}

type bookRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentTime time.Time `json:"appointment_time"`
	PaymentStatus   string    `json:"payment_status"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.Book(ctx, req.PatientID, req.DoctorID, req.AppointmentTime,
		req.PaymentStatus, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Queue(c echo.Context) error {
	items, err := h.svc.Queue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Appointment{}
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

func (h *Handler) Slots(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Slots(c.Request().Context()))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	view, err := h.svc.ForPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) CheckIn(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	a, err := h.svc.CheckIn(ctx, id, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, a)
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
	a, err := h.svc.Transition(ctx, id, req.Status, auth.UserNameFromContext(ctx))
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, a)
}
