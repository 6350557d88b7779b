package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/middleware"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type AuthHandler struct {
	responder
	authService ports.AuthService
}

func NewAuthHandler(auth ports.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{responder: newResponder(logger), authService: auth}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, LoginResponse{Message: "Login realizado com sucesso", Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok, ok := middleware.TokenFrom(r.Context())
	if !ok {
		h.fail(w, r, domain.Errorf(domain.KindUnauthenticated, "Autenticação necessária"))
		return
	}
	if err := h.authService.Logout(r.Context(), tok.ID, tok.ExpiresAt); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, messageResponse{Message: "Sessão encerrada"})
}
