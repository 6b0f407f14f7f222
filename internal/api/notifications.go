package api

import "net/http"

// ListNotifications handles GET /api/notifications.
//
//	@Summary	List the caller's notifications, newest first
//	@Tags		notifications
//	@Produce	json
//	@Success	200	{array}	notify.Item
//	@Router		/notifications [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.notif.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// MarkNotificationRead handles PUT /api/notifications/{id}/read.
//
//	@Summary	Mark one notification read
//	@Tags		notifications
//	@Param		id	path	int	true	"Notification id"
//	@Success	204	"Marked read"
//	@Failure	404	{object}	errResponse
//	@Router		/notifications/{id}/read [put]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid notification id"))
		return
	}
	if err := h.notif.MarkRead(r.Context(), id, userID(r)); err != nil {
		writeError(w, "mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead handles PUT /api/notifications/read-all.
//
//	@Summary	Mark all of the caller's notifications read
//	@Tags		notifications
//	@Success	204	"Marked read"
//	@Router		/notifications/read-all [put]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notif.MarkAllRead(r.Context(), userID(r)); err != nil {
		writeError(w, "mark all notifications read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/events, the per-user SSE stream.
//
//	@Summary	Stream notification events over SSE
//	@Tags		notifications
//	@Produce	text/event-stream
//	@Router		/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.broker.Stream(userID(r), w, r)
}
