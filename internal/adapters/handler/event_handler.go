package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type EventHandler struct {
	responder
	events ports.EventService
}

func NewEventHandler(events ports.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{responder: newResponder(logger), events: events}
}

type eventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=4000"`
	Location    string     `json:"location" validate:"max=200"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

func (e eventRequest) input() ports.EventInput {
	return ports.EventInput{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
	}
}

type rsvpRequest struct {
	Status string `json:"status" validate:"required,oneof=going not_going"`
}

type checkInRequest struct {
	ChildID *string `json:"child_id"`
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.events.ListEvents(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req eventRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.events.CreateEvent(r.Context(), a, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, e)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req eventRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.events.UpdateEvent(r.Context(), a, r.PathValue("id"), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, e)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.events.DeleteEvent(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}

func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req rsvpRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	rsvp, err := h.events.RSVP(r.Context(), a, r.PathValue("id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, rsvp)
}

func (h *EventHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.participation(w, r, h.events.CheckIn)
}

func (h *EventHandler) CancelCheckIn(w http.ResponseWriter, r *http.Request) {
	h.participation(w, r, h.events.CancelParticipation)
}

func (h *EventHandler) participation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, a domain.Actor, eventID string, childID *string) (*domain.EventParticipation, error)) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req checkInRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if req.ChildID != nil && *req.ChildID == "" {
		req.ChildID = nil
	}
	p, err := op(r.Context(), a, r.PathValue("id"), req.ChildID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, p)
}

func (h *EventHandler) Participants(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.events.ListParticipants(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view.Rsvps = list(view.Rsvps)
	view.Participations = list(view.Participations)
	h.json(w, http.StatusOK, view)
}
