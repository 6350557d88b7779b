package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type DocumentHandler struct {
	responder
	documents ports.DocumentService
}

func NewDocumentHandler(documents ports.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{responder: newResponder(logger), documents: documents}
}

type documentRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	URL           string `json:"url" validate:"required"`
	InstitutionID string `json:"institution_id"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	docs, err := h.documents.ListDocuments(r.Context(), a)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusOK, list(docs))
}

func (h *DocumentHandler) Share(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req documentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := h.documents.ShareDocument(r.Context(), a, ports.DocumentInput{
		Title:         req.Title,
		Description:   req.Description,
		URL:           req.URL,
		InstitutionID: req.InstitutionID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.documents.DeleteDocument(r.Context(), a, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.json(w, http.StatusNoContent, nil)
}
