package services

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type DocumentService struct {
	store ports.Store
}

func NewDocumentService(store ports.Store) *DocumentService {
	return &DocumentService{store: store}
}

// ShareDocument registers a document reference. Staff share with their whole community;
// members share privately with one linked institution.
func (s *DocumentService) ShareDocument(ctx context.Context, actor domain.Actor, in ports.DocumentInput) (*domain.Document, error) {
	fields := map[string]string{}
	required(fields, "title", in.Title, "Título é obrigatório")
	required(fields, "url", in.URL, "Endereço do documento é obrigatório")
	if err := validationResult(fields); err != nil {
		return nil, err
	}

	var doc domain.Document
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		owner, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		doc = domain.Document{
			ID:          uuid.NewString(),
			OwnerID:     owner.ID,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			URL:         strings.TrimSpace(in.URL),
			CreatedAt:   nowUTC(),
		}
		if id := owner.StaffInstitutionID(); id != "" {
			doc.InstitutionID = id
			doc.Visibility = domain.DocumentCommunity
			return r.Documents().Create(ctx, doc)
		}

		if strings.TrimSpace(in.InstitutionID) == "" {
			return domain.NewValidationError(map[string]string{"institution_id": "Selecione a instituição"})
		}
		ok, err := linked(ctx, r, owner.ID, in.InstitutionID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Errorf(domain.KindNotConnected, "Você não está conectado a esta instituição")
		}
		doc.InstitutionID = in.InstitutionID
		doc.Visibility = domain.DocumentPrivate
		return r.Documents().Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns what the caller may see, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context, actor domain.Actor) ([]domain.Document, error) {
	var out []domain.Document
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if id := user.StaffInstitutionID(); id != "" {
			out, err = r.Documents().ListByInstitutions(ctx, []string{id})
			return err
		}

		own, err := r.Documents().ListByOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(own))
		out = make([]domain.Document, 0, len(own))
		for _, d := range own {
			seen[d.ID] = true
			out = append(out, d)
		}
		ids, err := visibleInstitutionIDs(ctx, r, user)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			shared, err := r.Documents().ListByInstitutions(ctx, ids)
			if err != nil {
				return err
			}
			for _, d := range shared {
				if d.Visibility == domain.DocumentCommunity && !seen[d.ID] {
					seen[d.ID] = true
					out = append(out, d)
				}
			}
		}
		slices.SortStableFunc(out, func(a, b domain.Document) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
		return nil
	})
	return out, err
}

func (s *DocumentService) DeleteDocument(ctx context.Context, actor domain.Actor, documentID string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		doc, err := r.Documents().Get(ctx, documentID)
		if err != nil {
			return notFound(err, "Documento")
		}
		if doc.OwnerID != actor.ID {
			return domain.Forbidden("Apenas quem compartilhou pode excluir este documento")
		}
		return r.Documents().Delete(ctx, doc.ID)
	})
}
