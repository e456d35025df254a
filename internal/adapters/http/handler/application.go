package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hireloop/portal-api/internal/core/application"
)

type applicationHandler struct {
	svc application.UseCase
}

type applyRequest struct {
	JobID string `json:"jobId"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *applicationHandler) apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := h.svc.Apply(r.Context(), principalFrom(r.Context()), application.ApplyInput{JobID: req.JobID})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"application": toApplicationView(created)})
}

func (h *applicationHandler) listMine(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListMine(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": toApplicationViews(apps)})
}

func (h *applicationHandler) listByCompany(w http.ResponseWriter, r *http.Request) {
	in := application.ListByCompanyInput{CompanyID: chi.URLParam(r, "companyId")}
	if raw := r.URL.Query().Get("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			writeServiceError(w, r, badRequest("archived must be true or false"))
			return
		}
		in.Archived = &archived
	}

	apps, err := h.svc.ListByCompany(r.Context(), principalFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": toApplicationViews(apps)})
}

func (h *applicationHandler) pipeline(w http.ResponseWriter, r *http.Request) {
	cols, err := h.svc.Pipeline(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "companyId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]columnView, 0, len(cols))
	for _, c := range cols {
		out = append(out, columnView{Status: string(c.Status), Applications: toApplicationViews(c.Applications)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": out})
}

func (h *applicationHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	// Ownership is resolved by the service before the status is parsed, so an
	// unusable body still reaches it with an empty status.
	var req changeStatusRequest
	decodeErr := decodeJSON(r, &req, false)
	if decodeErr != nil {
		req.Status = ""
	}

	_, err := h.svc.ChangeStatus(r.Context(), principalFrom(r.Context()), application.ChangeStatusInput{
		ID:     chi.URLParam(r, "id"),
		Status: req.Status,
	})
	if err != nil {
		if decodeErr != nil && errors.Is(err, application.ErrInvalidStatus) {
			err = decodeErr
		}
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *applicationHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Withdraw(r.Context(), principalFrom(r.Context()), application.WithdrawInput{ID: chi.URLParam(r, "id")}); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}
