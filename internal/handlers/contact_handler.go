package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
	"github.com/SaltaGet/Back-SIJAC/internal/notify"
)

type ContactSender interface {
	SendContact(ctx context.Context, form notify.ContactForm) error
}

type ContactHandler struct {
	sender ContactSender
	log    *zap.Logger
}

func NewContactHandler(sender ContactSender, log *zap.Logger) *ContactHandler {
	return &ContactHandler{sender: sender, log: log}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=20"`
	Message string `json:"message" binding:"required,max=2000"`
}

func (h *ContactHandler) Send(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	err := h.sender.SendContact(c.Request.Context(), notify.ContactForm{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
	})
	if err != nil {
		h.log.Warn("contact e-mail failed", zap.Error(err))
		httperr.FromError(c, err, "failed_to_send_email")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}
