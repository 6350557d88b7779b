package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

type EventService struct {
	store    ports.Store
	notifier *Notifier
	logger   *zap.Logger
}

func NewEventService(store ports.Store, notifier *Notifier, logger *zap.Logger) *EventService {
	return &EventService{store: store, notifier: notifier, logger: logger}
}

func validateEvent(in ports.EventInput) error {
	fields := map[string]string{}
	required(fields, "title", in.Title, "Título é obrigatório")
	if in.StartsAt.IsZero() {
		fields["starts_at"] = "Data de início é obrigatória"
	}
	if in.EndsAt != nil && !in.EndsAt.After(in.StartsAt) {
		fields["ends_at"] = "O término deve ser posterior ao início"
	}
	return validationResult(fields)
}

func (s *EventService) CreateEvent(ctx context.Context, actor domain.Actor, in ports.EventInput) (*domain.Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}
	var event domain.Event
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		staff, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		institutionID, err := requireStaff(staff)
		if err != nil {
			return err
		}
		event = domain.Event{
			ID:            uuid.NewString(),
			InstitutionID: institutionID,
			Title:         strings.TrimSpace(in.Title),
			Description:   strings.TrimSpace(in.Description),
			Location:      strings.TrimSpace(in.Location),
			StartsAt:      in.StartsAt.UTC(),
			EndsAt:        utcPtr(in.EndsAt),
			CreatedAt:     nowUTC(),
		}
		if err := r.Events().Create(ctx, event); err != nil {
			return err
		}

		members, err := r.InstitutionLinks().ListMembers(ctx, institutionID)
		if err != nil {
			s.logger.Warn("list members for fan-out failed", zap.String("institution_id", institutionID), zap.Error(err))
			return nil
		}
		s.notifier.FanOut(ctx, r.Notifications(), members, staff.ID, func(domain.User) domain.Notification {
			return domain.Notification{
				Type:    domain.NotificationEventCreated,
				Message: fmt.Sprintf("Novo evento: %s em %s", event.Title, event.StartsAt.Format("02/01/2006 15:04")),
				EventID: domain.Ref(event.ID),
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("event", "create")
	return &event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, actor domain.Actor, eventID string, in ports.EventInput) (*domain.Event, error) {
	if err := validateEvent(in); err != nil {
		return nil, err
	}
	var event *domain.Event
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		event, err = s.owned(ctx, r, actor, eventID)
		if err != nil {
			return err
		}
		event.Title = strings.TrimSpace(in.Title)
		event.Description = strings.TrimSpace(in.Description)
		event.Location = strings.TrimSpace(in.Location)
		event.StartsAt = in.StartsAt.UTC()
		event.EndsAt = utcPtr(in.EndsAt)
		return r.Events().Update(ctx, *event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, actor domain.Actor, eventID string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		event, err := s.owned(ctx, r, actor, eventID)
		if err != nil {
			return err
		}
		return r.Events().Delete(ctx, event.ID)
	})
}

func (s *EventService) ListEvents(ctx context.Context, actor domain.Actor) ([]domain.Event, error) {
	var out []domain.Event
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
			out = []domain.Event{}
			return nil
		}
		out, err = r.Events().ListByInstitutions(ctx, ids)
		return err
	})
	return out, err
}

// RSVP records the caller's answer. Answering again overwrites the previous answer.
func (s *EventService) RSVP(ctx context.Context, actor domain.Actor, eventID, status string) (*domain.EventRsvp, error) {
	answer, err := domain.ParseRsvpStatus(status)
	if err != nil {
		return nil, err
	}
	var rsvp *domain.EventRsvp
	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if _, err := s.visible(ctx, r, user, eventID); err != nil {
			return err
		}
		rsvp, err = r.Events().UpsertRsvp(ctx, domain.EventRsvp{
			ID:        uuid.NewString(),
			EventID:   eventID,
			UserID:    user.ID,
			Status:    answer,
			UpdatedAt: nowUTC(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("event", "rsvp")
	return rsvp, nil
}

// CheckIn confirms participation of the caller, or of one of the caller's children.
func (s *EventService) CheckIn(ctx context.Context, actor domain.Actor, eventID string, childID *string) (*domain.EventParticipation, error) {
	var p *domain.EventParticipation
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if _, err := s.visible(ctx, r, user, eventID); err != nil {
			return err
		}
		if childID != nil {
			if _, err := ownedChild(ctx, r, actor, *childID); err != nil {
				return err
			}
		}
		p, err = r.Events().FindParticipation(ctx, eventID, user.ID, childID)
		switch {
		case errors.Is(err, ports.ErrNotFound):
			p = &domain.EventParticipation{ID: uuid.NewString(), EventID: eventID, UserID: user.ID, ChildID: childID}
		case err != nil:
			return err
		}
		p.Status = domain.ParticipationConfirmed
		p.CheckedInAt = nowUTC()
		return r.Events().SaveParticipation(ctx, *p)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("event", "checkin")
	return p, nil
}

func (s *EventService) CancelParticipation(ctx context.Context, actor domain.Actor, eventID string, childID *string) (*domain.EventParticipation, error) {
	var p *domain.EventParticipation
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		p, err = r.Events().FindParticipation(ctx, eventID, actor.ID, childID)
		if err != nil {
			return notFound(err, "Participação")
		}
		p.Status = domain.ParticipationCancelled
		return r.Events().SaveParticipation(ctx, *p)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("event", "cancel_participation")
	return p, nil
}

func (s *EventService) ListParticipants(ctx context.Context, actor domain.Actor, eventID string) (*ports.ParticipantView, error) {
	var view ports.ParticipantView
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := s.owned(ctx, r, actor, eventID); err != nil {
			return err
		}
		var err error
		if view.Rsvps, err = r.Events().ListRsvps(ctx, eventID); err != nil {
			return err
		}
		view.Participations, err = r.Events().ListParticipations(ctx, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *EventService) owned(ctx context.Context, r ports.Repositories, actor domain.Actor, eventID string) (*domain.Event, error) {
	event, err := r.Events().Get(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "Evento")
	}
	staff, err := loadActor(ctx, r, actor)
	if err != nil {
		return nil, err
	}
	if !staff.ActsFor(event.InstitutionID) {
		return nil, domain.Forbidden("Apenas a instituição responsável pode gerenciar este evento")
	}
	return event, nil
}

func (s *EventService) visible(ctx context.Context, r ports.Repositories, user *domain.User, eventID string) (*domain.Event, error) {
	event, err := r.Events().Get(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "Evento")
	}
	ok, err := canSee(ctx, r, user, event.InstitutionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Forbidden("Você não faz parte desta comunidade")
	}
	return event, nil
}
