package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hireloop/portal-api/internal/core/notification"
)

type notificationHandler struct {
	svc notification.UseCase
}

func (h *notificationHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := notification.ListInput{PageToken: q.Get("pageToken")}
	if raw := q.Get("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			writeServiceError(w, r, badRequest("unread must be true or false"))
			return
		}
		in.UnreadOnly = unread
	}
	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			writeServiceError(w, r, notification.ErrInvalidPageSize)
			return
		}
		in.PageSize = size
	}

	result, err := h.svc.ListForUser(r.Context(), principalFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	items := make([]notificationView, 0, len(result.Notifications))
	for _, n := range result.Notifications {
		items = append(items, toNotificationView(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"nextPageToken": result.NextPageToken,
	})
}

func (h *notificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkRead(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *notificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.MarkAllRead(r.Context(), principalFrom(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}
