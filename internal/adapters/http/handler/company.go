package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hireloop/portal-api/internal/core/company"
	"github.com/hireloop/portal-api/internal/core/employee"
)

type companyHandler struct {
	svc       company.UseCase
	employees employee.UseCase
}

type registerCompanyRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

type rejectCompanyRequest struct {
	Reason string `json:"reason"`
}

func (h *companyHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerCompanyRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	created, err := h.svc.Register(r.Context(), principalFrom(r.Context()), company.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"company": toCompanyView(created)})
}

func (h *companyHandler) listPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.ListPending(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]companyView, 0, len(pending))
	for _, c := range pending {
		out = append(out, toCompanyView(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": out})
}

func (h *companyHandler) approve(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Approve(r.Context(), principalFrom(r.Context()), company.ApproveInput{ID: chi.URLParam(r, "id")}); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *companyHandler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectCompanyRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	err := h.svc.Reject(r.Context(), principalFrom(r.Context()), company.RejectInput{
		ID:     chi.URLParam(r, "id"),
		Reason: req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *companyHandler) listEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := employee.ListEmployeesInput{
		CompanyID: chi.URLParam(r, "id"),
		PageToken: q.Get("pageToken"),
	}
	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			writeServiceError(w, r, employee.ErrInvalidPageSize)
			return
		}
		in.PageSize = size
	}

	result, err := h.employees.ListEmployees(r.Context(), principalFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]employeeView, 0, len(result.Employees))
	for _, e := range result.Employees {
		out = append(out, toEmployeeView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employees":     out,
		"nextPageToken": result.NextPageToken,
	})
}
