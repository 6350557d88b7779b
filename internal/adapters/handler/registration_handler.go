package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type RegistrationHandler struct {
	responder
	registrationService ports.RegistrationService
}

func NewRegistrationHandler(registration ports.RegistrationService, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{responder: newResponder(logger), registrationService: registration}
}

type RegistrationRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	Name            string `json:"name" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=parent cuidador institution coordinator"`
	InstitutionName string `json:"institution_name,omitempty" validate:"required_if=Role institution"`
	InstitutionID   string `json:"institution_id,omitempty" validate:"required_if=Role coordinator"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.registrationService.Register(r.Context(), ports.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		Role:            req.Role,
		InstitutionName: req.InstitutionName,
		InstitutionID:   req.InstitutionID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, user)
}
