package handler

import (
	"net/http"

	"github.com/hireloop/portal-api/internal/core/user"
)

type userHandler struct {
	auth Authenticator
	svc  user.UseCase
}

type registerRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// register creates the local account for a verified identity that has no
// account yet. The uid and email come from the token, never from the body.
func (h *userHandler) register(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.Identify(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = id.Name
	}
	created, err := h.svc.Register(r.Context(), user.RegisterInput{
		ID:    id.UID,
		Email: id.Email,
		Name:  name,
		Role:  user.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": toUserView(created)})
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *userHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), user.UpdateProfileInput{
		ID:   principalFrom(r.Context()).UID,
		Name: req.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserView(updated)})
}

func (h *userHandler) me(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	found, err := h.svc.GetUser(r.Context(), user.GetUserInput{ID: p.UID})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserView(found)})
}
