package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tableside-api/pkg/payment"
)

// SignatureHeader carries the provider's HMAC of the webhook body
const SignatureHeader = "X-Payment-Signature"

// maxWebhookBody bounds the webhook payload read into memory
const maxWebhookBody = 64 << 10

// PaymentHandler handles online payment status requests
type PaymentHandler struct {
	paymentService *service.PaymentService
	webhookSecret  string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, webhookSecret: webhookSecret}
}

// Reconcile asks the provider for the order's payment status and applies it
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	outcome, err := h.paymentService.Reconcile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment status retrieved", outcome)
}

// Webhook receives provider notifications
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "Unable to read request body")
		return
	}
	if !payment.VerifySignature(h.webhookSecret, body, c.GetHeader(SignatureHeader)) {
		response.Unauthorized(c, "Invalid signature")
		return
	}

	var ev payment.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	outcome, err := h.paymentService.HandleEvent(c.Request.Context(), ev)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment event applied", outcome)
}
