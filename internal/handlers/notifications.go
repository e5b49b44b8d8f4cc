package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ListNotificationsHandler handles GET /api/notifications?email=.
func (h *Handler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		http.Error(w, "Missing email parameter", http.StatusBadRequest)
		return
	}

	notifications, err := h.Store.GetNotificationsByEmail(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

// MarkNotificationsReadHandler handles PUT /api/notifications/mark-read.
func (h *Handler) MarkNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		NotificationIDs []string `json:"notificationIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(input.NotificationIDs) == 0 {
		http.Error(w, "notificationIds is required", http.StatusBadRequest)
		return
	}

	if err := h.Store.MarkNotificationsRead(r.Context(), input.NotificationIDs); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notifications marked as read"})
}
