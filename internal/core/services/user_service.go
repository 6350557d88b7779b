package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

const searchLimit = 50

type UserService struct {
	store ports.Store
}

func NewUserService(store ports.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetProfile(ctx context.Context, actor domain.Actor, userID string) (*ports.Profile, error) {
	var profile ports.Profile
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := r.Users().GetByID(ctx, userID)
		if err != nil {
			return notFound(err, "Usuário")
		}
		profile.User = *user
		if user.ID == actor.ID {
			profile.Connection = domain.StateNotConnected
			return nil
		}
		edge, err := r.Connections().FindBetween(ctx, actor.ID, user.ID)
		switch {
		case errors.Is(err, ports.ErrNotFound):
			edge = nil
		case err != nil:
			return err
		}
		profile.Connection = domain.StateFor(edge, actor.ID)
		if edge != nil && edge.Status != domain.ConnectionDeclined {
			profile.ConnectionID = edge.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile edits the caller's own display fields. Role and email are not editable.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, in ports.ProfileInput) (*domain.User, error) {
	fields := map[string]string{}
	required(fields, "name", in.Name, "Nome é obrigatório")
	if err := validationResult(fields); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		user, err = loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		user.Name = strings.TrimSpace(in.Name)
		user.Bio = strings.TrimSpace(in.Bio)
		user.Phone = strings.TrimSpace(in.Phone)
		return r.Users().UpdateProfile(ctx, *user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SearchUsers lists other users by role and name fragment for connection discovery.
func (s *UserService) SearchUsers(ctx context.Context, actor domain.Actor, role, query string) ([]domain.User, error) {
	var filter domain.Role
	if strings.TrimSpace(role) != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	var out []domain.User
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		users, err := r.Users().Search(ctx, filter, strings.TrimSpace(query), searchLimit+1)
		if err != nil {
			return err
		}
		out = make([]domain.User, 0, len(users))
		for _, u := range users {
			if u.ID == actor.ID {
				continue
			}
			out = append(out, u)
		}
		if len(out) > searchLimit {
			out = out[:searchLimit]
		}
		return nil
	})
	return out, err
}
