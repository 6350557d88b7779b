package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/services"
	"github.com/AchilleasB/cuidotecas/community-service/internal/mocks"
)

// world wires every service against one in-memory store.
type world struct {
	t     *testing.T
	ctx   context.Context
	store *mocks.Store

	connections   *services.ConnectionService
	cuidotecas    *services.CuidotecaService
	children      *services.ChildService
	enrollments   *services.EnrollmentService
	notifications *services.NotificationService
	feed          *services.FeedService
	events        *services.EventService
	documents     *services.DocumentService
	messaging     *services.MessagingService
	users         *services.UserService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := mocks.NewStore()
	logger := zap.NewNop()
	notifier := services.NewNotifier(logger)
	return &world{
		t:             t,
		ctx:           context.Background(),
		store:         store,
		connections:   services.NewConnectionService(store, notifier, logger),
		cuidotecas:    services.NewCuidotecaService(store, notifier, logger),
		children:      services.NewChildService(store),
		enrollments:   services.NewEnrollmentService(store, notifier, logger),
		notifications: services.NewNotificationService(store),
		feed:          services.NewFeedService(store, notifier, logger),
		events:        services.NewEventService(store, notifier, logger),
		documents:     services.NewDocumentService(store),
		messaging:     services.NewMessagingService(store, logger),
		users:         services.NewUserService(store),
	}
}

func (w *world) user(id string, role domain.Role) domain.Actor {
	u := domain.User{ID: id, Name: id, Role: role}
	if role == domain.RoleInstitution {
		u.InstitutionName = "Instituição " + id
	}
	w.store.AddUser(u)
	return domain.Actor{ID: id, Role: role}
}

func (w *world) coordinator(id, institutionID string) domain.Actor {
	w.store.AddUser(domain.User{ID: id, Name: id, Role: domain.RoleCoordinator, InstitutionID: institutionID})
	return domain.Actor{ID: id, Role: domain.RoleCoordinator}
}

func (w *world) link(member domain.Actor, institution domain.Actor) {
	w.t.Helper()
	_, err := w.connections.ConnectInstitution(w.ctx, member, institution.ID)
	require.NoError(w.t, err)
}

func (w *world) child(parent domain.Actor, name string, age int) *domain.Child {
	w.t.Helper()
	c, err := w.children.CreateChild(w.ctx, parent, ports.ChildInput{Name: name, Age: age})
	require.NoError(w.t, err)
	return c
}

func (w *world) cuidoteca(inst domain.Actor, name string, minAge, maxAge int) *domain.Cuidoteca {
	w.t.Helper()
	c, err := w.cuidotecas.CreateCuidoteca(w.ctx, inst, cuidotecaInput(name, minAge, maxAge))
	require.NoError(w.t, err)
	return c
}

func cuidotecaInput(name string, minAge, maxAge int) ports.CuidotecaInput {
	return ports.CuidotecaInput{
		Name:        name,
		Hours:       "08:00-12:00",
		Days:        []string{"monday", "wednesday"},
		MaxCapacity: 10,
		MinAge:      minAge,
		MaxAge:      maxAge,
	}
}

func (w *world) notificationsOf(userID string, typ domain.NotificationType) []domain.Notification {
	var out []domain.Notification
	for _, n := range w.store.NotificationsFor(userID) {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func at(minutes int) time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}
