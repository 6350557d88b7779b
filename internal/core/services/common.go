package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

// notFound turns a repository miss into a user-facing NotFound for entity.
func notFound(err error, entity string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return domain.NotFound(entity)
	}
	return err
}

// loadActor resolves the authenticated caller. A token whose subject no longer exists
// is treated as unauthenticated.
func loadActor(ctx context.Context, r ports.Repositories, actor domain.Actor) (*domain.User, error) {
	user, err := r.Users().GetByID(ctx, actor.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.Errorf(domain.KindUnauthenticated, "Sessão inválida")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// requireStaff returns the institution the caller acts for, or Forbidden.
func requireStaff(user *domain.User) (string, error) {
	id := user.StaffInstitutionID()
	if id == "" {
		return "", domain.Forbidden("Apenas instituições podem realizar esta operação")
	}
	return id, nil
}

// visibleInstitutionIDs lists the institution communities the user can see: staff see
// their own, everyone else sees the institutions they are linked to.
func visibleInstitutionIDs(ctx context.Context, r ports.Repositories, user *domain.User) ([]string, error) {
	if id := user.StaffInstitutionID(); id != "" {
		return []string{id}, nil
	}
	links, err := r.InstitutionLinks().ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.InstitutionID)
	}
	return ids, nil
}

func canSee(ctx context.Context, r ports.Repositories, user *domain.User, institutionID string) (bool, error) {
	if user.ActsFor(institutionID) {
		return true, nil
	}
	if user.Role.IsStaff() {
		return false, nil
	}
	_, err := r.InstitutionLinks().Find(ctx, user.ID, institutionID)
	if errors.Is(err, ports.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func required(fields map[string]string, name, value, message string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = message
	}
}

func validationResult(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return domain.NewValidationError(fields)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
