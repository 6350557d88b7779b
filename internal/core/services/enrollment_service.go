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

// EnrollmentService runs the child and cuidador enrollment workflows:
// pending -> confirmed (approve), pending -> cancelled (reject). Parent or cuidador
// cancellation deletes the row. Capacity is informational and not checked.
type EnrollmentService struct {
	store    ports.Store
	notifier *Notifier
	logger   *zap.Logger
}

func NewEnrollmentService(store ports.Store, notifier *Notifier, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{store: store, notifier: notifier, logger: logger}
}

func (s *EnrollmentService) Enroll(ctx context.Context, actor domain.Actor, in ports.EnrollInput) (*domain.Enrollment, error) {
	var created domain.Enrollment
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		parent, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if parent.Role != domain.RoleParent {
			return domain.Forbidden("Apenas responsáveis podem inscrever crianças")
		}
		child, err := r.Children().Get(ctx, in.ChildID)
		if err != nil {
			return notFound(err, "Criança")
		}
		if child.ParentID != parent.ID {
			return domain.Errorf(domain.KindNotOwned, "Esta criança não pertence a você")
		}
		cuidoteca, err := r.Cuidotecas().Get(ctx, in.CuidotecaID)
		if err != nil {
			return notFound(err, "Cuidoteca")
		}
		if !cuidoteca.AcceptsAge(child.Age) {
			return domain.Errorf(domain.KindAgeOutOfRange,
				"A criança tem %d anos, mas esta cuidoteca aceita crianças de %d a %d anos",
				child.Age, cuidoteca.MinAge, cuidoteca.MaxAge)
		}
		days, err := domain.ParseWeekdays(in.RequestedDays)
		if err != nil {
			return err
		}
		_, err = r.Enrollments().FindActive(ctx, child.ID, cuidoteca.ID)
		switch {
		case err == nil:
			return domain.Errorf(domain.KindAlreadyExists, "%s já possui uma inscrição ativa nesta cuidoteca", child.Name)
		case !errors.Is(err, ports.ErrNotFound):
			return err
		}

		now := nowUTC()
		created = domain.Enrollment{
			ID:             uuid.NewString(),
			CuidotecaID:    cuidoteca.ID,
			ChildID:        child.ID,
			ParentID:       parent.ID,
			Status:         domain.EnrollmentPending,
			RequestedDays:  days,
			RequestedHours: strings.TrimSpace(in.RequestedHours),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Enrollments().Create(ctx, created); err != nil {
			return err
		}

		s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
			UserID:      cuidoteca.InstitutionID,
			Type:        domain.NotificationEnrollmentRequest,
			Message:     fmt.Sprintf("Nova solicitação de inscrição de %s na cuidoteca %s", child.Name, cuidoteca.Name),
			CuidotecaID: domain.Ref(cuidoteca.ID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("enrollment", "enroll")
	return &created, nil
}

func (s *EnrollmentService) Approve(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.Enrollment, error) {
	return s.decide(ctx, actor, enrollmentID, domain.EnrollmentConfirmed)
}

func (s *EnrollmentService) Reject(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.Enrollment, error) {
	return s.decide(ctx, actor, enrollmentID, domain.EnrollmentCancelled)
}

func (s *EnrollmentService) decide(ctx context.Context, actor domain.Actor, enrollmentID string, status domain.EnrollmentStatus) (*domain.Enrollment, error) {
	var enrollment *domain.Enrollment
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		enrollment, err = r.Enrollments().Get(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "Inscrição")
		}
		cuidoteca, err := s.ownedCuidoteca(ctx, r, actor, enrollment.CuidotecaID)
		if err != nil {
			return err
		}
		if enrollment.Status != domain.EnrollmentPending {
			return domain.Errorf(domain.KindInvalidState, "Esta inscrição já foi %s", statusWord(enrollment.Status))
		}

		now := nowUTC()
		if err := r.Enrollments().UpdateStatus(ctx, enrollment.ID, status, now); err != nil {
			return err
		}
		enrollment.Status = status
		enrollment.UpdatedAt = now

		childName := "sua criança"
		if child, err := r.Children().Get(ctx, enrollment.ChildID); err == nil {
			childName = child.Name
		}
		s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
			UserID:      enrollment.ParentID,
			Type:        domain.NotificationEnrollmentUpdate,
			Message:     fmt.Sprintf("A inscrição de %s na cuidoteca %s foi %s", childName, cuidoteca.Name, statusWord(status)),
			CuidotecaID: domain.Ref(cuidoteca.ID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("enrollment", string(status))
	return enrollment, nil
}

// Cancel deletes the enrollment. Only the parent who owns the enrolled child may cancel.
func (s *EnrollmentService) Cancel(ctx context.Context, actor domain.Actor, enrollmentID string) error {
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		enrollment, err := r.Enrollments().Get(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "Inscrição")
		}
		if enrollment.ParentID != actor.ID {
			return domain.Forbidden("Apenas o responsável pela criança pode cancelar esta inscrição")
		}
		child, err := r.Children().Get(ctx, enrollment.ChildID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if child != nil && child.ParentID != actor.ID {
			return domain.Forbidden("Apenas o responsável pela criança pode cancelar esta inscrição")
		}
		return r.Enrollments().Delete(ctx, enrollment.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordTransition("enrollment", "cancel")
	return nil
}

func (s *EnrollmentService) ListForParent(ctx context.Context, actor domain.Actor) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		out, err = r.Enrollments().ListByParent(ctx, actor.ID)
		return err
	})
	return out, err
}

func (s *EnrollmentService) ListForCuidoteca(ctx context.Context, actor domain.Actor, cuidotecaID string) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := s.ownedCuidoteca(ctx, r, actor, cuidotecaID); err != nil {
			return err
		}
		var err error
		out, err = r.Enrollments().ListByCuidoteca(ctx, cuidotecaID)
		return err
	})
	return out, err
}

func (s *EnrollmentService) EnrollCuidador(ctx context.Context, actor domain.Actor, in ports.EnrollInput) (*domain.CuidadorEnrollment, error) {
	var created domain.CuidadorEnrollment
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		cuidador, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if cuidador.Role != domain.RoleCuidador {
			return domain.Forbidden("Apenas cuidadores podem se inscrever como cuidador")
		}
		cuidoteca, err := r.Cuidotecas().Get(ctx, in.CuidotecaID)
		if err != nil {
			return notFound(err, "Cuidoteca")
		}
		days, err := domain.ParseWeekdays(in.RequestedDays)
		if err != nil {
			return err
		}
		_, err = r.CuidadorEnrollments().FindActive(ctx, cuidador.ID, cuidoteca.ID)
		switch {
		case err == nil:
			return domain.Errorf(domain.KindAlreadyExists, "Você já possui uma inscrição ativa nesta cuidoteca")
		case !errors.Is(err, ports.ErrNotFound):
			return err
		}

		now := nowUTC()
		created = domain.CuidadorEnrollment{
			ID:             uuid.NewString(),
			CuidotecaID:    cuidoteca.ID,
			CuidadorID:     cuidador.ID,
			Status:         domain.EnrollmentPending,
			RequestedDays:  days,
			RequestedHours: strings.TrimSpace(in.RequestedHours),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.CuidadorEnrollments().Create(ctx, created); err != nil {
			return err
		}

		s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
			UserID:      cuidoteca.InstitutionID,
			Type:        domain.NotificationEnrollmentRequest,
			Message:     fmt.Sprintf("%s solicitou participar como cuidador(a) da cuidoteca %s", cuidador.DisplayName(), cuidoteca.Name),
			CuidotecaID: domain.Ref(cuidoteca.ID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("cuidador_enrollment", "enroll")
	return &created, nil
}

func (s *EnrollmentService) ApproveCuidador(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.CuidadorEnrollment, error) {
	return s.decideCuidador(ctx, actor, enrollmentID, domain.EnrollmentConfirmed)
}

func (s *EnrollmentService) RejectCuidador(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.CuidadorEnrollment, error) {
	return s.decideCuidador(ctx, actor, enrollmentID, domain.EnrollmentCancelled)
}

func (s *EnrollmentService) decideCuidador(ctx context.Context, actor domain.Actor, enrollmentID string, status domain.EnrollmentStatus) (*domain.CuidadorEnrollment, error) {
	var enrollment *domain.CuidadorEnrollment
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		enrollment, err = r.CuidadorEnrollments().Get(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "Inscrição")
		}
		cuidoteca, err := s.ownedCuidoteca(ctx, r, actor, enrollment.CuidotecaID)
		if err != nil {
			return err
		}
		if enrollment.Status != domain.EnrollmentPending {
			return domain.Errorf(domain.KindInvalidState, "Esta inscrição já foi %s", statusWord(enrollment.Status))
		}

		now := nowUTC()
		if err := r.CuidadorEnrollments().UpdateStatus(ctx, enrollment.ID, status, now); err != nil {
			return err
		}
		enrollment.Status = status
		enrollment.UpdatedAt = now

		s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
			UserID:      enrollment.CuidadorID,
			Type:        domain.NotificationEnrollmentUpdate,
			Message:     fmt.Sprintf("Sua inscrição como cuidador(a) na cuidoteca %s foi %s", cuidoteca.Name, statusWord(status)),
			CuidotecaID: domain.Ref(cuidoteca.ID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("cuidador_enrollment", string(status))
	return enrollment, nil
}

func (s *EnrollmentService) CancelCuidador(ctx context.Context, actor domain.Actor, enrollmentID string) error {
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		enrollment, err := r.CuidadorEnrollments().Get(ctx, enrollmentID)
		if err != nil {
			return notFound(err, "Inscrição")
		}
		if enrollment.CuidadorID != actor.ID {
			return domain.Forbidden("Apenas o próprio cuidador pode cancelar esta inscrição")
		}
		return r.CuidadorEnrollments().Delete(ctx, enrollment.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordTransition("cuidador_enrollment", "cancel")
	return nil
}

func (s *EnrollmentService) ListForCuidador(ctx context.Context, actor domain.Actor) ([]domain.CuidadorEnrollment, error) {
	var out []domain.CuidadorEnrollment
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		out, err = r.CuidadorEnrollments().ListByCuidador(ctx, actor.ID)
		return err
	})
	return out, err
}

func (s *EnrollmentService) ListCuidadoresForCuidoteca(ctx context.Context, actor domain.Actor, cuidotecaID string) ([]domain.CuidadorEnrollment, error) {
	var out []domain.CuidadorEnrollment
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := s.ownedCuidoteca(ctx, r, actor, cuidotecaID); err != nil {
			return err
		}
		var err error
		out, err = r.CuidadorEnrollments().ListByCuidoteca(ctx, cuidotecaID)
		return err
	})
	return out, err
}

// ownedCuidoteca loads the cuidoteca and checks the caller acts for its institution.
func (s *EnrollmentService) ownedCuidoteca(ctx context.Context, r ports.Repositories, actor domain.Actor, cuidotecaID string) (*domain.Cuidoteca, error) {
	cuidoteca, err := r.Cuidotecas().Get(ctx, cuidotecaID)
	if err != nil {
		return nil, notFound(err, "Cuidoteca")
	}
	staff, err := loadActor(ctx, r, actor)
	if err != nil {
		return nil, err
	}
	if !staff.ActsFor(cuidoteca.InstitutionID) {
		return nil, domain.Forbidden("Apenas a instituição responsável pode gerenciar esta cuidoteca")
	}
	return cuidoteca, nil
}

func statusWord(status domain.EnrollmentStatus) string {
	switch status {
	case domain.EnrollmentConfirmed:
		return "aprovada"
	case domain.EnrollmentCancelled:
		return "recusada"
	case domain.EnrollmentPending:
		return "registrada"
	default:
		return string(status)
	}
}
