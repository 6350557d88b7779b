package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type EnrollmentHandler struct {
	responder
	enrollments ports.EnrollmentService
}

func NewEnrollmentHandler(enrollments ports.EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{responder: newResponder(logger), enrollments: enrollments}
}

type enrollRequest struct {
	CuidotecaID    string   `json:"cuidoteca_id" validate:"required"`
	ChildID        string   `json:"child_id" validate:"required"`
	RequestedDays  []string `json:"requested_days" validate:"dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	RequestedHours string   `json:"requested_hours" validate:"max=60"`
}

type cuidadorEnrollRequest struct {
	CuidotecaID    string   `json:"cuidoteca_id" validate:"required"`
	RequestedDays  []string `json:"requested_days" validate:"dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	RequestedHours string   `json:"requested_hours" validate:"max=60"`
}

func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req enrollRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.enrollments.Enroll(r.Context(), a, ports.EnrollInput{
		CuidotecaID:    req.CuidotecaID,
		ChildID:        req.ChildID,
		RequestedDays:  req.RequestedDays,
		RequestedHours: req.RequestedHours,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, e)
}

func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.enrollments.ListForParent(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *EnrollmentHandler) ListForCuidoteca(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	children, err := h.enrollments.ListForCuidoteca(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cuidadores, err := h.enrollments.ListCuidadoresForCuidoteca(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, map[string]any{
		"children":   list(children),
		"cuidadores": list(cuidadores),
	})
}

func (h *EnrollmentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.enrollments.Approve(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, e)
}

func (h *EnrollmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.enrollments.Reject(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, e)
}

func (h *EnrollmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.enrollments.Cancel(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}

func (h *EnrollmentHandler) EnrollCuidador(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req cuidadorEnrollRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.enrollments.EnrollCuidador(r.Context(), a, ports.EnrollInput{
		CuidotecaID:    req.CuidotecaID,
		RequestedDays:  req.RequestedDays,
		RequestedHours: req.RequestedHours,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, e)
}

func (h *EnrollmentHandler) ListCuidadorMine(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.enrollments.ListForCuidador(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *EnrollmentHandler) ApproveCuidador(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.enrollments.ApproveCuidador(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, e)
}

func (h *EnrollmentHandler) RejectCuidador(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.enrollments.RejectCuidador(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, e)
}

func (h *EnrollmentHandler) CancelCuidador(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.enrollments.CancelCuidador(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}
