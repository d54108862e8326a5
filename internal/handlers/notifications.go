package handlers

import (
	"brokerage-app-server/internal/middleware"
	"brokerage-app-server/internal/notify"
	"brokerage-app-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler surfaces the pending-intake counter to the UI.
type NotificationHandler struct {
	Monitor *notify.PendingMonitor
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(monitor *notify.PendingMonitor) *NotificationHandler {
	return &NotificationHandler{Monitor: monitor}
}

// PendingCountResponse carries the live pending-client count.
type PendingCountResponse struct {
	Count int64 `json:"count"`
}

// GetPendingCount returns the cached count of clients waiting for broker
// assignment. Brokers always see zero.
func (h *NotificationHandler) GetPendingCount(c *gin.Context) {
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, "Pending count fetched successfully", PendingCountResponse{
		Count: h.Monitor.PendingCount(role),
	})
}

// RecountPending forces a full reconciliation of the cached count against
// the database. The UI calls this on reconnect, since the event feed gives
// no delivery guarantee.
func (h *NotificationHandler) RecountPending(c *gin.Context) {
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Monitor.Recount(); err != nil {
		utils.ServiceUnavailable(c, "Failed to recount pending clients: "+err.Error())
		return
	}

	utils.Success(c, "Pending count recounted successfully", PendingCountResponse{
		Count: h.Monitor.PendingCount(role),
	})
}
