package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ataleek/portal/internal/model"
	"github.com/ataleek/portal/pkg/logger"
)

// deliveryIDHeader carries GitHub's GUID for a webhook delivery; it is
// the idempotency key for redeliveries.
const deliveryIDHeader = "X-GitHub-Delivery"

// Webhook handles inbound GitHub event deliveries. The endpoint is
// fire-and-forget for the sender: whatever happens inside, the response
// is an empty 200. Failures are logged, never surfaced.
func (h *Handler) Webhook(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	deliveryID := e.Request().Header.Get(deliveryIDHeader)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	event := &model.WebhookEvent{}
	if err := json.NewDecoder(e.Request().Body).Decode(event); err != nil {
		l.Warn("undecodable webhook payload",
			zap.String("delivery_id", deliveryID),
			zap.Error(err))
		return e.NoContent(http.StatusOK)
	}

	if err := h.webhooks.HandleDelivery(e.Request().Context(), deliveryID, event); err != nil {
		l.Error("webhook reaction failed",
			zap.String("delivery_id", deliveryID),
			zap.Error(err))
	}

	return e.NoContent(http.StatusOK)
}
