package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type MessageHandler struct {
	responder
	messaging ports.MessagingService
}

func NewMessageHandler(messaging ports.MessagingService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{responder: newResponder(logger), messaging: messaging}
}

type sendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=4000"`
}

type bulkRequest struct {
	TargetGroup string `json:"target_group" validate:"required"`
	Content     string `json:"content" validate:"required,max=4000"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req sendRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	msg, err := h.messaging.Send(r.Context(), a, req.ReceiverID, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, msg)
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.messaging.ListConversations(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(out))
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msgs, err := h.messaging.GetConversation(r.Context(), a, r.PathValue("userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(msgs))
}

// Bulk sends one message to every member of the target group. Unknown groups are a
// validation error raised by the service.
func (h *MessageHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req bulkRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.messaging.BulkSend(r.Context(), a, req.TargetGroup, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, result)
}
