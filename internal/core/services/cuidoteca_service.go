package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

type CuidotecaService struct {
	store    ports.Store
	notifier *Notifier
	logger   *zap.Logger
}

func NewCuidotecaService(store ports.Store, notifier *Notifier, logger *zap.Logger) *CuidotecaService {
	return &CuidotecaService{store: store, notifier: notifier, logger: logger}
}

func validateCuidoteca(in ports.CuidotecaInput) ([]domain.Weekday, error) {
	fields := map[string]string{}
	required(fields, "name", in.Name, "Nome é obrigatório")
	required(fields, "hours", in.Hours, "Horário de funcionamento é obrigatório")
	if in.MaxCapacity <= 0 {
		fields["max_capacity"] = "Capacidade deve ser maior que zero"
	}
	if in.MinAge < 0 {
		fields["min_age"] = "Idade mínima não pode ser negativa"
	}
	if in.MinAge > in.MaxAge {
		fields["max_age"] = "Idade máxima deve ser maior ou igual à idade mínima"
	}
	days, err := domain.ParseWeekdays(in.Days)
	if err != nil {
		fields["days"] = err.Error()
	} else if len(days) == 0 {
		fields["days"] = "Selecione pelo menos um dia da semana"
	}
	if err := validationResult(fields); err != nil {
		return nil, err
	}
	return days, nil
}

func cleanCaretakers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CreateCuidoteca stores the cuidoteca and announces it to every member linked to the institution.
func (s *CuidotecaService) CreateCuidoteca(ctx context.Context, actor domain.Actor, in ports.CuidotecaInput) (*domain.Cuidoteca, error) {
	days, err := validateCuidoteca(in)
	if err != nil {
		return nil, err
	}

	var cuidoteca domain.Cuidoteca
	var notified int
	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		staff, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		institutionID, err := requireStaff(staff)
		if err != nil {
			return err
		}
		cuidoteca = domain.Cuidoteca{
			ID:            uuid.NewString(),
			InstitutionID: institutionID,
			Name:          strings.TrimSpace(in.Name),
			Description:   strings.TrimSpace(in.Description),
			Hours:         strings.TrimSpace(in.Hours),
			Days:          days,
			MaxCapacity:   in.MaxCapacity,
			MinAge:        in.MinAge,
			MaxAge:        in.MaxAge,
			Caretakers:    cleanCaretakers(in.Caretakers),
			CreatedAt:     nowUTC(),
		}
		if err := r.Cuidotecas().Create(ctx, cuidoteca); err != nil {
			return err
		}

		members, err := r.InstitutionLinks().ListMembers(ctx, institutionID)
		if err != nil {
			s.logger.Warn("list members for fan-out failed", zap.String("institution_id", institutionID), zap.Error(err))
			return nil
		}
		notified = s.notifier.FanOut(ctx, r.Notifications(), members, staff.ID, func(domain.User) domain.Notification {
			return domain.Notification{
				Type:        domain.NotificationCuidotecaCreated,
				Message:     fmt.Sprintf("Nova cuidoteca disponível: %s", cuidoteca.Name),
				CuidotecaID: domain.Ref(cuidoteca.ID),
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("cuidoteca", "create")
	s.logger.Debug("cuidoteca created", zap.String("cuidoteca_id", cuidoteca.ID), zap.Int("notified", notified))
	return &cuidoteca, nil
}

func (s *CuidotecaService) UpdateCuidoteca(ctx context.Context, actor domain.Actor, id string, in ports.CuidotecaInput) (*domain.Cuidoteca, error) {
	days, err := validateCuidoteca(in)
	if err != nil {
		return nil, err
	}
	var cuidoteca *domain.Cuidoteca
	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		cuidoteca, err = s.owned(ctx, r, actor, id)
		if err != nil {
			return err
		}
		cuidoteca.Name = strings.TrimSpace(in.Name)
		cuidoteca.Description = strings.TrimSpace(in.Description)
		cuidoteca.Hours = strings.TrimSpace(in.Hours)
		cuidoteca.Days = days
		cuidoteca.MaxCapacity = in.MaxCapacity
		cuidoteca.MinAge = in.MinAge
		cuidoteca.MaxAge = in.MaxAge
		cuidoteca.Caretakers = cleanCaretakers(in.Caretakers)
		return r.Cuidotecas().Update(ctx, *cuidoteca)
	})
	if err != nil {
		return nil, err
	}
	return cuidoteca, nil
}

func (s *CuidotecaService) DeleteCuidoteca(ctx context.Context, actor domain.Actor, id string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		cuidoteca, err := s.owned(ctx, r, actor, id)
		if err != nil {
			return err
		}
		return r.Cuidotecas().Delete(ctx, cuidoteca.ID)
	})
}

func (s *CuidotecaService) GetCuidoteca(ctx context.Context, actor domain.Actor, id string) (*domain.Cuidoteca, error) {
	var cuidoteca *domain.Cuidoteca
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		cuidoteca, err = r.Cuidotecas().Get(ctx, id)
		return notFound(err, "Cuidoteca")
	})
	if err != nil {
		return nil, err
	}
	return cuidoteca, nil
}

// ListCuidotecas returns the institution's own cuidotecas for staff and the linked
// institutions' cuidotecas for everyone else.
func (s *CuidotecaService) ListCuidotecas(ctx context.Context, actor domain.Actor) ([]domain.Cuidoteca, error) {
	var out []domain.Cuidoteca
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		ids, err := visibleInstitutionIDs(ctx, r, user)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			out = []domain.Cuidoteca{}
			return nil
		}
		out, err = r.Cuidotecas().ListByInstitutions(ctx, ids)
		return err
	})
	return out, err
}

func (s *CuidotecaService) owned(ctx context.Context, r ports.Repositories, actor domain.Actor, id string) (*domain.Cuidoteca, error) {
	cuidoteca, err := r.Cuidotecas().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Cuidoteca")
	}
	staff, err := loadActor(ctx, r, actor)
	if err != nil {
		return nil, err
	}
	if !staff.ActsFor(cuidoteca.InstitutionID) {
		return nil, domain.Forbidden("Apenas a instituição responsável pode alterar esta cuidoteca")
	}
	return cuidoteca, nil
}
