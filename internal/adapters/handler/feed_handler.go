package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type FeedHandler struct {
	responder
	feed ports.FeedService
}

func NewFeedHandler(feed ports.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{responder: newResponder(logger), feed: feed}
}

type postRequest struct {
	Content  string `json:"content" validate:"required,max=5000"`
	ImageURL string `json:"image_url"`
}

type voteRequest struct {
	VoteType string `json:"vote_type" validate:"required,oneof=upvote downvote"`
}

func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	posts, err := h.feed.ListFeed(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(posts))
}

func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req postRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	post, err := h.feed.CreatePost(r.Context(), a, ports.PostInput{Content: req.Content, ImageURL: req.ImageURL})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, post)
}

func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.feed.DeletePost(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}

func (h *FeedHandler) Vote(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req voteRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.feed.Vote(r.Context(), a, r.PathValue("id"), req.VoteType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, result)
}

func (h *FeedHandler) Pin(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	post, err := h.feed.TogglePin(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, post)
}

func (h *FeedHandler) Flag(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	post, err := h.feed.ToggleFlag(r.Context(), a, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, post)
}
