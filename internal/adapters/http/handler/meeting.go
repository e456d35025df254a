package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hireloop/portal-api/internal/core/meeting"
)

type meetingHandler struct {
	svc meeting.UseCase
}

type meetingRequestBody struct {
	Title           string    `json:"title"`
	Agenda          string    `json:"agenda"`
	PreferredStart  time.Time `json:"preferredStart"`
	DurationMinutes int       `json:"durationMinutes"`
}

type approveMeetingRequest struct {
	StartTime *time.Time `json:"startTime"`
}

type declineMeetingRequest struct {
	Reason string `json:"reason"`
}

func (h *meetingHandler) request(w http.ResponseWriter, r *http.Request) {
	var req meetingRequestBody
	if err := decodeJSON(r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := h.svc.Request(r.Context(), principalFrom(r.Context()), meeting.RequestInput{
		Title:           req.Title,
		Agenda:          req.Agenda,
		PreferredStart:  req.PreferredStart,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"meeting": toMeetingView(created)})
}

func (h *meetingHandler) listMine(w http.ResponseWriter, r *http.Request) {
	ms, err := h.svc.ListMine(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": toMeetingViews(ms)})
}

func (h *meetingHandler) listPending(w http.ResponseWriter, r *http.Request) {
	ms, err := h.svc.ListPending(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": toMeetingViews(ms)})
}

func (h *meetingHandler) approve(w http.ResponseWriter, r *http.Request) {
	var req approveMeetingRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	approved, err := h.svc.Approve(r.Context(), principalFrom(r.Context()), meeting.ApproveInput{
		ID:    chi.URLParam(r, "id"),
		Start: req.StartTime,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meeting": toMeetingView(approved)})
}

func (h *meetingHandler) decline(w http.ResponseWriter, r *http.Request) {
	var req declineMeetingRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	err := h.svc.Decline(r.Context(), principalFrom(r.Context()), meeting.DeclineInput{
		ID:     chi.URLParam(r, "id"),
		Reason: req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}
