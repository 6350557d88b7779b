package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

// ConnectionHandler serves peer connections and institution links.
type ConnectionHandler struct {
	responder
	connections ports.ConnectionService
}

func NewConnectionHandler(connections ports.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{responder: newResponder(logger), connections: connections}
}

type connectionRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

type statusResponse struct {
	Status       domain.ConnectionState `json:"status"`
	ConnectionID string                 `json:"connection_id,omitempty"`
}

func (h *ConnectionHandler) Request(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req connectionRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.connections.RequestConnection(r.Context(), a, req.RecipientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, c)
}

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.connections.ListConnections(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *ConnectionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.connections.ListPendingRequests(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *ConnectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, edge, err := h.connections.ConnectionStatus(r.Context(), a, r.PathValue("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := statusResponse{Status: state}
	if edge != nil && state != domain.StateNotConnected {
		resp.ConnectionID = edge.ID
	}
	h.json(w, http.StatusOK, resp)
}

func (h *ConnectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.connections.AcceptConnection(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, c)
}

func (h *ConnectionHandler) Decline(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.connections.DeclineConnection(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, c)
}

func (h *ConnectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.connections.RemoveConnection(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}

func (h *ConnectionHandler) LinkInstitution(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	link, err := h.connections.ConnectInstitution(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, link)
}

func (h *ConnectionHandler) UnlinkInstitution(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.connections.DisconnectInstitution(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}

func (h *ConnectionHandler) Institutions(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.connections.ListInstitutions(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *ConnectionHandler) Members(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.connections.ListMembers(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *ConnectionHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.connections.RemoveMember(r.Context(), a, r.PathValue("userId")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}
