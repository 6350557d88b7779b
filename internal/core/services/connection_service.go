package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

// ConnectionService manages peer connections and institution links.
type ConnectionService struct {
	store    ports.Store
	notifier *Notifier
	logger   *zap.Logger
}

func NewConnectionService(store ports.Store, notifier *Notifier, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{store: store, notifier: notifier, logger: logger}
}

func (s *ConnectionService) RequestConnection(ctx context.Context, actor domain.Actor, recipientID string) (*domain.Connection, error) {
	var created domain.Connection
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		requester, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if recipientID == requester.ID {
			return domain.Errorf(domain.KindInvalidPair, "Não é possível conectar-se consigo mesmo")
		}
		recipient, err := r.Users().GetByID(ctx, recipientID)
		if err != nil {
			return notFound(err, "Usuário")
		}
		if !domain.CanConnect(requester.Role, recipient.Role) {
			return domain.Errorf(domain.KindInvalidPair, "Conexões entre %s e %s não são permitidas", requester.Role, recipient.Role)
		}

		existing, err := r.Connections().FindBetween(ctx, requester.ID, recipient.ID)
		switch {
		case errors.Is(err, ports.ErrNotFound):
		case err != nil:
			return err
		case existing.Status != domain.ConnectionDeclined:
			return domain.Errorf(domain.KindAlreadyExists, "Já existe uma conexão ou solicitação pendente com este usuário")
		default:
			// a declined edge does not block a new request; it is replaced
			if err := r.Connections().Delete(ctx, existing.ID); err != nil {
				return err
			}
		}

		created = domain.Connection{
			ID:          uuid.NewString(),
			RequesterID: requester.ID,
			RecipientID: recipient.ID,
			Status:      domain.ConnectionPending,
			CreatedAt:   nowUTC(),
		}
		if err := r.Connections().Create(ctx, created); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return domain.Errorf(domain.KindAlreadyExists, "Já existe uma conexão ou solicitação pendente com este usuário")
			}
			return err
		}

		s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
			UserID:              recipient.ID,
			Type:                domain.NotificationConnectionRequest,
			Message:             fmt.Sprintf("%s enviou uma solicitação de conexão", requester.DisplayName()),
			ConnectionRequestID: domain.Ref(created.ID),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("connection", "request")
	return &created, nil
}

func (s *ConnectionService) AcceptConnection(ctx context.Context, actor domain.Actor, connectionID string) (*domain.Connection, error) {
	var conn *domain.Connection
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		conn, err = s.pendingForRecipient(ctx, r, actor, connectionID)
		if err != nil {
			return err
		}
		recipient, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}

		now := nowUTC()
		conn.Status = domain.ConnectionAccepted
		conn.AcceptedAt = &now
		if err := r.Connections().Update(ctx, *conn); err != nil {
			return err
		}
		if err := r.Notifications().DeleteByConnectionRequest(ctx, conn.ID); err != nil {
			return err
		}

		s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
			UserID:  conn.RequesterID,
			Type:    domain.NotificationGeneral,
			Message: fmt.Sprintf("%s aceitou sua solicitação de conexão", recipient.DisplayName()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("connection", "accept")
	return conn, nil
}

func (s *ConnectionService) DeclineConnection(ctx context.Context, actor domain.Actor, connectionID string) (*domain.Connection, error) {
	var conn *domain.Connection
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		conn, err = s.pendingForRecipient(ctx, r, actor, connectionID)
		if err != nil {
			return err
		}
		conn.Status = domain.ConnectionDeclined
		if err := r.Connections().Update(ctx, *conn); err != nil {
			return err
		}
		return r.Notifications().DeleteByConnectionRequest(ctx, conn.ID)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("connection", "decline")
	return conn, nil
}

func (s *ConnectionService) pendingForRecipient(ctx context.Context, r ports.Repositories, actor domain.Actor, connectionID string) (*domain.Connection, error) {
	conn, err := r.Connections().Get(ctx, connectionID)
	if err != nil {
		return nil, notFound(err, "Conexão")
	}
	if conn.RecipientID != actor.ID {
		return nil, domain.Forbidden("Apenas o destinatário pode responder a esta solicitação")
	}
	if conn.Status != domain.ConnectionPending {
		return nil, domain.Errorf(domain.KindInvalidState, "Esta solicitação já foi respondida")
	}
	return conn, nil
}

// RemoveConnection deletes the edge. It serves both to cancel a pending request and to
// sever an accepted connection.
func (s *ConnectionService) RemoveConnection(ctx context.Context, actor domain.Actor, connectionID string) error {
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		conn, err := r.Connections().Get(ctx, connectionID)
		if err != nil {
			return notFound(err, "Conexão")
		}
		if !conn.Involves(actor.ID) {
			return domain.Forbidden("Você não participa desta conexão")
		}
		if err := r.Notifications().DeleteByConnectionRequest(ctx, conn.ID); err != nil {
			return err
		}
		return r.Connections().Delete(ctx, conn.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordTransition("connection", "remove")
	return nil
}

// ConnectionStatus reports how the current user relates to target.
func (s *ConnectionService) ConnectionStatus(ctx context.Context, actor domain.Actor, targetID string) (domain.ConnectionState, *domain.Connection, error) {
	var edge *domain.Connection
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		edge, err = r.Connections().FindBetween(ctx, actor.ID, targetID)
		if errors.Is(err, ports.ErrNotFound) {
			edge = nil
			return nil
		}
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return domain.StateFor(edge, actor.ID), edge, nil
}

func (s *ConnectionService) ListConnections(ctx context.Context, actor domain.Actor) ([]ports.ConnectionView, error) {
	var out []ports.ConnectionView
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		conns, err := r.Connections().ListAccepted(ctx, actor.ID)
		if err != nil {
			return err
		}
		out, err = withCounterparts(ctx, r, actor.ID, conns)
		return err
	})
	return out, err
}

func (s *ConnectionService) ListPendingRequests(ctx context.Context, actor domain.Actor) ([]ports.ConnectionView, error) {
	var out []ports.ConnectionView
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		conns, err := r.Connections().ListIncomingPending(ctx, actor.ID)
		if err != nil {
			return err
		}
		out, err = withCounterparts(ctx, r, actor.ID, conns)
		return err
	})
	return out, err
}

func withCounterparts(ctx context.Context, r ports.Repositories, userID string, conns []domain.Connection) ([]ports.ConnectionView, error) {
	ids := make([]string, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.Counterpart(userID))
	}
	users, err := r.Users().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]ports.ConnectionView, 0, len(conns))
	for _, c := range conns {
		out = append(out, ports.ConnectionView{Connection: c, User: byID[c.Counterpart(userID)]})
	}
	return out, nil
}

// ConnectInstitution links the caller to an institution. Linking twice fails with AlreadyConnected.
func (s *ConnectionService) ConnectInstitution(ctx context.Context, actor domain.Actor, institutionID string) (*domain.InstitutionLink, error) {
	var link domain.InstitutionLink
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		if user.Role.IsStaff() {
			return domain.Forbidden("Instituições não podem se conectar a outras instituições")
		}
		inst, err := r.Users().GetByID(ctx, institutionID)
		if err != nil {
			return notFound(err, "Instituição")
		}
		if inst.Role != domain.RoleInstitution {
			return domain.NotFound("Instituição")
		}

		_, err = r.InstitutionLinks().Find(ctx, user.ID, inst.ID)
		switch {
		case err == nil:
			return domain.Errorf(domain.KindAlreadyConnected, "Você já está conectado a esta instituição")
		case !errors.Is(err, ports.ErrNotFound):
			return err
		}

		link = domain.InstitutionLink{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			InstitutionID: inst.ID,
			CreatedAt:     nowUTC(),
		}
		if err := r.InstitutionLinks().Create(ctx, link); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return domain.Errorf(domain.KindAlreadyConnected, "Você já está conectado a esta instituição")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("institution_link", "connect")
	return &link, nil
}

// DisconnectInstitution removes the caller's link if present. It never fails on absence.
func (s *ConnectionService) DisconnectInstitution(ctx context.Context, actor domain.Actor, institutionID string) error {
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		removed, err := r.InstitutionLinks().Delete(ctx, actor.ID, institutionID)
		if err != nil {
			return err
		}
		if !removed {
			s.logger.Debug("institution link already absent",
				zap.String("user_id", actor.ID), zap.String("institution_id", institutionID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordTransition("institution_link", "disconnect")
	return nil
}

// RemoveMember lets the institution side destroy a link. Idempotent like DisconnectInstitution.
func (s *ConnectionService) RemoveMember(ctx context.Context, actor domain.Actor, userID string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		staff, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		institutionID, err := requireStaff(staff)
		if err != nil {
			return err
		}
		_, err = r.InstitutionLinks().Delete(ctx, userID, institutionID)
		return err
	})
}

// ListInstitutions returns the institutions the caller is linked to, oldest link first.
func (s *ConnectionService) ListInstitutions(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	var out []domain.User
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		links, err := r.InstitutionLinks().ListByUser(ctx, actor.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.InstitutionID)
		}
		users, err := r.Users().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[string]domain.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		out = make([]domain.User, 0, len(ids))
		for _, id := range ids {
			if u, ok := byID[id]; ok {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

func (s *ConnectionService) ListMembers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	var out []domain.User
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		staff, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		institutionID, err := requireStaff(staff)
		if err != nil {
			return err
		}
		out, err = r.InstitutionLinks().ListMembers(ctx, institutionID)
		return err
	})
	return out, err
}
