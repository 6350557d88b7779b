package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type UserHandler struct {
	responder
	users ports.UserService
}

func NewUserHandler(users ports.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{responder: newResponder(logger), users: users}
}

type profileRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Bio   string `json:"bio" validate:"max=1000"`
	Phone string `json:"phone" validate:"max=40"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profile, err := h.users.GetProfile(r.Context(), a, a.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, profile.User)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req profileRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), a, ports.ProfileInput{Name: req.Name, Bio: req.Bio, Phone: req.Phone})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, user)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	users, err := h.users.SearchUsers(r.Context(), a, q.Get("role"), q.Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(users))
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profile, err := h.users.GetProfile(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, profile)
}
