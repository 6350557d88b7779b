package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

// CuidotecaHandler serves children and cuidotecas.
type CuidotecaHandler struct {
	responder
	children   ports.ChildService
	cuidotecas ports.CuidotecaService
}

func NewCuidotecaHandler(children ports.ChildService, cuidotecas ports.CuidotecaService, logger *zap.Logger) *CuidotecaHandler {
	return &CuidotecaHandler{responder: newResponder(logger), children: children, cuidotecas: cuidotecas}
}

type childRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Age          *int   `json:"age" validate:"required,min=0,max=18"`
	SpecialNeeds string `json:"special_needs" validate:"max=1000"`
}

func (c childRequest) input() ports.ChildInput {
	return ports.ChildInput{Name: c.Name, Age: *c.Age, SpecialNeeds: c.SpecialNeeds}
}

type cuidotecaRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	Hours       string   `json:"hours" validate:"required,max=60"`
	Days        []string `json:"days" validate:"required,min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	MaxCapacity int      `json:"max_capacity" validate:"required,min=1"`
	MinAge      int      `json:"min_age" validate:"min=0"`
	MaxAge      int      `json:"max_age" validate:"gtefield=MinAge"`
	Caretakers  []string `json:"caretakers" validate:"dive,max=120"`
}

func (c cuidotecaRequest) input() ports.CuidotecaInput {
	return ports.CuidotecaInput{
		Name:        c.Name,
		Description: c.Description,
		Hours:       c.Hours,
		Days:        c.Days,
		MaxCapacity: c.MaxCapacity,
		MinAge:      c.MinAge,
		MaxAge:      c.MaxAge,
		Caretakers:  c.Caretakers,
	}
}

func (h *CuidotecaHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req childRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	child, err := h.children.CreateChild(r.Context(), a, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, child)
}

func (h *CuidotecaHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	children, err := h.children.ListChildren(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(children))
}

func (h *CuidotecaHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req childRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	child, err := h.children.UpdateChild(r.Context(), a, r.PathValue("id"), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, child)
}

func (h *CuidotecaHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.children.DeleteChild(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}

func (h *CuidotecaHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req cuidotecaRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cuidotecas.CreateCuidoteca(r.Context(), a, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, c)
}

func (h *CuidotecaHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.cuidotecas.ListCuidotecas(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *CuidotecaHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cuidotecas.GetCuidoteca(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, c)
}

func (h *CuidotecaHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req cuidotecaRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cuidotecas.UpdateCuidoteca(r.Context(), a, r.PathValue("id"), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, c)
}

func (h *CuidotecaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.cuidotecas.DeleteCuidoteca(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}
