package handler

import (
	"fmt"
	"net/http"

	"auction-house/internal/notify"
	"auction-house/services/marketplace/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	inbox *notify.Inbox
}

func NewNotificationHandler(inbox *notify.Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// ListNotificationsHandler handles GET /users/:user_id/notifications.
// Users may only read their own inbox.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	userID := c.Param("user_id")
	if CurrentUser(c) != userID {
		utils.JSONError(c, http.StatusForbidden, fmt.Errorf("operation not permitted"), "operation not permitted")
		return
	}

	resp := helpers.NotificationsResponse{
		Notifications: h.inbox.ListForRecipient(userID),
		UnreadCount:   h.inbox.UnreadCount(userID),
	}

	utils.JSONResponse(c, http.StatusOK, resp, "notifications retrieved successfully")
}

// MarkNotificationReadHandler handles POST /notifications/:notification_id/read
func (h *NotificationHandler) MarkNotificationReadHandler(c *gin.Context) {
	notificationID := c.Param("notification_id")
	userID := CurrentUser(c)

	if err := h.inbox.MarkRead(notificationID, userID); err != nil {
		utils.JSONError(c, http.StatusNotFound, err, "notification not found")
		utils.Warn("MarkNotificationReadHandler: notification not found", map[string]any{
			"notification_id": notificationID,
			"user_id":         userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "notification marked as read")
}

// CurrentUser returns the acting user id established by the identity
// middleware. The core trusts this value; authentication is upstream.
func CurrentUser(c *gin.Context) string {
	return c.GetString("user_id")
}
