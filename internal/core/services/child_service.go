package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type ChildService struct {
	store ports.Store
}

func NewChildService(store ports.Store) *ChildService {
	return &ChildService{store: store}
}

func validateChild(in ports.ChildInput) error {
	fields := map[string]string{}
	required(fields, "name", in.Name, "Nome da criança é obrigatório")
	if in.Age < 0 {
		fields["age"] = "Idade não pode ser negativa"
	}
	return validationResult(fields)
}

func (s *ChildService) CreateChild(ctx context.Context, actor domain.Actor, in ports.ChildInput) (*domain.Child, error) {
	if err := validateChild(in); err != nil {
		return nil, err
	}
	var child domain.Child
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		parent, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if parent.Role != domain.RoleParent {
			return domain.Forbidden("Apenas responsáveis podem cadastrar crianças")
		}
		child = domain.Child{
			ID:           uuid.NewString(),
			ParentID:     parent.ID,
			Name:         strings.TrimSpace(in.Name),
			Age:          in.Age,
			SpecialNeeds: strings.TrimSpace(in.SpecialNeeds),
			CreatedAt:    nowUTC(),
		}
		return r.Children().Create(ctx, child)
	})
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (s *ChildService) UpdateChild(ctx context.Context, actor domain.Actor, childID string, in ports.ChildInput) (*domain.Child, error) {
	if err := validateChild(in); err != nil {
		return nil, err
	}
	var child *domain.Child
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		child, err = ownedChild(ctx, r, actor, childID)
		if err != nil {
			return err
		}
		child.Name = strings.TrimSpace(in.Name)
		child.Age = in.Age
		child.SpecialNeeds = strings.TrimSpace(in.SpecialNeeds)
		return r.Children().Update(ctx, *child)
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

func (s *ChildService) DeleteChild(ctx context.Context, actor domain.Actor, childID string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		child, err := ownedChild(ctx, r, actor, childID)
		if err != nil {
			return err
		}
		return r.Children().Delete(ctx, child.ID)
	})
}

func (s *ChildService) ListChildren(ctx context.Context, actor domain.Actor) ([]domain.Child, error) {
	var out []domain.Child
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		out, err = r.Children().ListByParent(ctx, actor.ID)
		return err
	})
	return out, err
}

func ownedChild(ctx context.Context, r ports.Repositories, actor domain.Actor, childID string) (*domain.Child, error) {
	child, err := r.Children().Get(ctx, childID)
	if err != nil {
		return nil, notFound(err, "Criança")
	}
	if child.ParentID != actor.ID {
		return nil, domain.Errorf(domain.KindNotOwned, "Esta criança não pertence a você")
	}
	return child, nil
}
