package assistant

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/pkg/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the chat endpoint outside the authenticated
// API; patients talk to the assistant without staff credentials.
func (h *Handler) RegisterPublicRoutes(public *echo.Group) {
	public.POST("/assistant/chat", h.Chat)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Chat(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return httperr.Map(err)
	}
	return c.JSON(http.StatusOK, resp)
}
