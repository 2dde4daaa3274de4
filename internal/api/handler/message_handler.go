package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

type MessageHandler struct {
	messageService ports.MessageService
}

func NewMessageHandler(messageService ports.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type postMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type postMessageResponse struct {
	Message string         `json:"message"`
	Data    domain.Message `json:"data"`
}

// Post appends a message to the case conversation. Only the case owner and
// the assigned doctor may post; the stored sender type comes from the
// caller's verified role.
//
// @Summary      Post a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Case ID"
// @Param        body  body      postMessageRequest  true  "Message text"
// @Success      201  {object}  postMessageResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/cases/{id}/messages [post]
func (h *MessageHandler) Post(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	msg, err := h.messageService.Post(c.Request().Context(), c.Param("id"), ident, req.Message)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, postMessageResponse{
		Message: "Message sent",
		Data:    *msg,
	})
}

// List returns the case conversation in timestamp order.
//
// @Summary      List case messages
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  messageListResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/cases/{id}/messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	msgs, err := h.messageService.List(c.Request().Context(), c.Param("id"), ident)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageListResponse{Messages: msgs})
}
