package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/middleware"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

// Services bundles every use case the HTTP surface exposes.
type Services struct {
	Auth          ports.AuthService
	Registration  ports.RegistrationService
	Users         ports.UserService
	Children      ports.ChildService
	Cuidotecas    ports.CuidotecaService
	Enrollments   ports.EnrollmentService
	Connections   ports.ConnectionService
	Notifications ports.NotificationService
	Feed          ports.FeedService
	Events        ports.EventService
	Documents     ports.DocumentService
	Messaging     ports.MessagingService
}

// NewRouter registers every route on a fresh mux.
func NewRouter(svc Services, auth *middleware.AuthMiddleware, health *HealthHandler, logger *zap.Logger) *http.ServeMux {
	authH := NewAuthHandler(svc.Auth, logger)
	registration := NewRegistrationHandler(svc.Registration, logger)
	users := NewUserHandler(svc.Users, logger)
	cuidotecas := NewCuidotecaHandler(svc.Children, svc.Cuidotecas, logger)
	enrollments := NewEnrollmentHandler(svc.Enrollments, logger)
	connections := NewConnectionHandler(svc.Connections, logger)
	notifications := NewNotificationHandler(svc.Notifications, logger)
	feed := NewFeedHandler(svc.Feed, logger)
	events := NewEventHandler(svc.Events, logger)
	documents := NewDocumentHandler(svc.Documents, logger)
	messages := NewMessageHandler(svc.Messaging, logger)

	staff := []domain.Role{domain.RoleInstitution, domain.RoleCoordinator}
	a := auth.Authenticate

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	if health != nil {
		mux.HandleFunc("GET /health", health.Health)
		mux.HandleFunc("GET /health/live", health.Live)
		mux.HandleFunc("GET /health/ready", health.Ready)
	}
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /auth/register", registration.Register)
	mux.HandleFunc("POST /auth/login", authH.Login)
	mux.HandleFunc("POST /auth/logout", a(authH.Logout))

	mux.HandleFunc("GET /me", a(users.Me))
	mux.HandleFunc("PUT /me", a(users.UpdateMe))
	mux.HandleFunc("GET /users", a(users.Search))
	mux.HandleFunc("GET /users/{id}", a(users.Profile))

	mux.HandleFunc("POST /children", auth.RequireRole([]domain.Role{domain.RoleParent}, cuidotecas.CreateChild))
	mux.HandleFunc("GET /children", a(cuidotecas.ListChildren))
	mux.HandleFunc("PUT /children/{id}", a(cuidotecas.UpdateChild))
	mux.HandleFunc("DELETE /children/{id}", a(cuidotecas.DeleteChild))

	mux.HandleFunc("POST /cuidotecas", auth.RequireRole(staff, cuidotecas.Create))
	mux.HandleFunc("GET /cuidotecas", a(cuidotecas.List))
	mux.HandleFunc("GET /cuidotecas/{id}", a(cuidotecas.Get))
	mux.HandleFunc("PUT /cuidotecas/{id}", auth.RequireRole(staff, cuidotecas.Update))
	mux.HandleFunc("DELETE /cuidotecas/{id}", auth.RequireRole(staff, cuidotecas.Delete))
	mux.HandleFunc("GET /cuidotecas/{id}/enrollments", auth.RequireRole(staff, enrollments.ListForCuidoteca))

	mux.HandleFunc("POST /enrollments", a(enrollments.Enroll))
	mux.HandleFunc("GET /enrollments", a(enrollments.ListMine))
	mux.HandleFunc("POST /enrollments/{id}/approve", a(enrollments.Approve))
	mux.HandleFunc("POST /enrollments/{id}/reject", a(enrollments.Reject))
	mux.HandleFunc("DELETE /enrollments/{id}", a(enrollments.Cancel))

	mux.HandleFunc("POST /cuidador-enrollments", a(enrollments.EnrollCuidador))
	mux.HandleFunc("GET /cuidador-enrollments", a(enrollments.ListCuidadorMine))
	mux.HandleFunc("POST /cuidador-enrollments/{id}/approve", a(enrollments.ApproveCuidador))
	mux.HandleFunc("POST /cuidador-enrollments/{id}/reject", a(enrollments.RejectCuidador))
	mux.HandleFunc("DELETE /cuidador-enrollments/{id}", a(enrollments.CancelCuidador))

	mux.HandleFunc("POST /connections", a(connections.Request))
	mux.HandleFunc("GET /connections", a(connections.List))
	mux.HandleFunc("GET /connections/pending", a(connections.Pending))
	mux.HandleFunc("GET /connections/status/{userId}", a(connections.Status))
	mux.HandleFunc("POST /connections/{id}/accept", a(connections.Accept))
	mux.HandleFunc("POST /connections/{id}/decline", a(connections.Decline))
	mux.HandleFunc("DELETE /connections/{id}", a(connections.Remove))

	mux.HandleFunc("POST /institutions/{id}/link", a(connections.LinkInstitution))
	mux.HandleFunc("DELETE /institutions/{id}/link", a(connections.UnlinkInstitution))
	mux.HandleFunc("GET /institutions", a(connections.Institutions))
	mux.HandleFunc("GET /institution-members", auth.RequireRole(staff, connections.Members))
	mux.HandleFunc("DELETE /institution-members/{userId}", auth.RequireRole(staff, connections.RemoveMember))

	mux.HandleFunc("GET /notifications", a(notifications.List))
	mux.HandleFunc("GET /notifications/unread-count", a(notifications.UnreadCount))
	mux.HandleFunc("POST /notifications/read-all", a(notifications.MarkAllRead))
	mux.HandleFunc("POST /notifications/{id}/read", a(notifications.MarkRead))
	mux.HandleFunc("DELETE /notifications/{id}", a(notifications.Delete))

	mux.HandleFunc("GET /posts", a(feed.List))
	mux.HandleFunc("POST /posts", a(feed.Create))
	mux.HandleFunc("DELETE /posts/{id}", a(feed.Delete))
	mux.HandleFunc("POST /posts/{id}/vote", a(feed.Vote))
	mux.HandleFunc("POST /posts/{id}/pin", auth.RequireRole(staff, feed.Pin))
	mux.HandleFunc("POST /posts/{id}/flag", auth.RequireRole(staff, feed.Flag))

	mux.HandleFunc("GET /events", a(events.List))
	mux.HandleFunc("POST /events", auth.RequireRole(staff, events.Create))
	mux.HandleFunc("PUT /events/{id}", auth.RequireRole(staff, events.Update))
	mux.HandleFunc("DELETE /events/{id}", auth.RequireRole(staff, events.Delete))
	mux.HandleFunc("POST /events/{id}/rsvp", a(events.RSVP))
	mux.HandleFunc("POST /events/{id}/checkin", a(events.CheckIn))
	mux.HandleFunc("DELETE /events/{id}/checkin", a(events.CancelCheckIn))
	mux.HandleFunc("GET /events/{id}/participants", auth.RequireRole(staff, events.Participants))

	mux.HandleFunc("GET /documents", a(documents.List))
	mux.HandleFunc("POST /documents", a(documents.Share))
	mux.HandleFunc("DELETE /documents/{id}", a(documents.Delete))

	mux.HandleFunc("POST /messages", a(messages.Send))
	mux.HandleFunc("GET /messages/conversations", a(messages.Conversations))
	mux.HandleFunc("GET /messages/conversations/{userId}", a(messages.Conversation))
	mux.HandleFunc("POST /messages/bulk", auth.RequireRole(staff, messages.Bulk))

	return mux
}
