package staff

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/workflow"
)

type Handler struct {
	svc        *Service
	signingKey []byte
	tokenTTL   time.Duration
}

func NewHandler(svc *Service, signingKey []byte, tokenTTL time.Duration) *Handler {
	return &Handler{svc: svc, signingKey: signingKey, tokenTTL: tokenTTL}
}

// RegisterPublicRoutes attaches routes that must work without a bearer
// token. Only login lives here.
func (h *Handler) RegisterPublicRoutes(public *echo.Group) {
	public.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse", "clerk"))
	readGroup.GET("/doctors", h.ListDoctors)
	readGroup.GET("/doctors/:id", h.GetDoctor)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/doctors", h.CreateDoctor)
	adminGroup.PUT("/doctors/:id", h.UpdateDoctor)
	adminGroup.DELETE("/doctors/:id", h.DeleteDoctor)
	adminGroup.POST("/staff/accounts", h.CreateAccount)
	adminGroup.GET("/staff/accounts", h.ListAccounts)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	token, err := auth.IssueToken(h.signingKey, a.ID.String(), a.Name, []string{a.Role}, h.tokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Account: a})
}

type doctorRequest struct {
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	ConsultationFee float64 `json:"consultation_fee"`
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.CreateDoctor(c.Request().Context(), req.Name, req.Department, req.ConsultationFee)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Resolve(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, workflow.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req := doctorRequest{ConsultationFee: -1}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, req.Name, req.Department, req.ConsultationFee)
	if err != nil {
		if errors.Is(err, workflow.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		if errors.Is(err, workflow.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type accountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (h *Handler) CreateAccount(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.CreateAccount(c.Request().Context(), req.Username, req.Password, req.Name, req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAccounts(c echo.Context) error {
	items, err := h.svc.ListAccounts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
