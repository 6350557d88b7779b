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

const maxMessageLength = 4000

type MessagingService struct {
	store  ports.Store
	logger *zap.Logger
}

func NewMessagingService(store ports.Store, logger *zap.Logger) *MessagingService {
	return &MessagingService{store: store, logger: logger}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	fields := map[string]string{}
	required(fields, "content", content, "A mensagem não pode estar vazia")
	if len(content) > maxMessageLength {
		fields["content"] = fmt.Sprintf("A mensagem deve ter no máximo %d caracteres", maxMessageLength)
	}
	return content, validationResult(fields)
}

// Send delivers a direct message. Peers need an accepted connection; institution staff and
// their members need an institution link.
func (s *MessagingService) Send(ctx context.Context, actor domain.Actor, receiverID, content string) (*domain.Message, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if receiverID == actor.ID {
		return nil, domain.NewValidationError(map[string]string{"receiver_id": "Não é possível enviar mensagem para si mesmo"})
	}

	var msg domain.Message
	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		sender, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		receiver, err := r.Users().GetByID(ctx, receiverID)
		if err != nil {
			return notFound(err, "Usuário")
		}
		ok, err := canMessage(ctx, r, sender, receiver)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Errorf(domain.KindNotConnected, "Você precisa estar conectado a %s para enviar mensagens", receiver.DisplayName())
		}
		msg = domain.Message{
			ID:         uuid.NewString(),
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    content,
			CreatedAt:  nowUTC(),
		}
		return r.Messages().Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("message", "send")
	return &msg, nil
}

func canMessage(ctx context.Context, r ports.Repositories, sender, receiver *domain.User) (bool, error) {
	senderInst, receiverInst := sender.StaffInstitutionID(), receiver.StaffInstitutionID()
	switch {
	case senderInst != "" && receiverInst != "":
		return senderInst == receiverInst, nil
	case senderInst != "":
		return linked(ctx, r, receiver.ID, senderInst)
	case receiverInst != "":
		return linked(ctx, r, sender.ID, receiverInst)
	}
	edge, err := r.Connections().FindBetween(ctx, sender.ID, receiver.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return edge.Status == domain.ConnectionAccepted, nil
}

func linked(ctx context.Context, r ports.Repositories, userID, institutionID string) (bool, error) {
	_, err := r.InstitutionLinks().Find(ctx, userID, institutionID)
	if errors.Is(err, ports.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetConversation returns the messages exchanged with counterpartID, oldest first, and
// marks the ones the caller received as read.
func (s *MessagingService) GetConversation(ctx context.Context, actor domain.Actor, counterpartID string) ([]domain.Message, error) {
	var out []domain.Message
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		out, err = r.Messages().ListBetween(ctx, actor.ID, counterpartID)
		if err != nil {
			return err
		}
		unread := false
		for i := range out {
			if out[i].ReceiverID == actor.ID && !out[i].Read {
				out[i].Read = true
				unread = true
			}
		}
		if !unread {
			return nil
		}
		return r.Messages().MarkReadFrom(ctx, actor.ID, counterpartID)
	})
	return out, err
}

// ListConversations derives one entry per counterpart from the caller's messages, most
// recent conversation first.
func (s *MessagingService) ListConversations(ctx context.Context, actor domain.Actor) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		msgs, err := r.Messages().ListForUser(ctx, actor.ID)
		if err != nil {
			return err
		}
		index := map[string]int{}
		var ids []string
		for _, m := range msgs {
			other := m.SenderID
			if other == actor.ID {
				other = m.ReceiverID
			}
			i, seen := index[other]
			if !seen {
				i = len(out)
				index[other] = i
				ids = append(ids, other)
				out = append(out, domain.Conversation{
					CounterpartID: other,
					LastMessage:   m.Content,
					LastMessageAt: m.CreatedAt,
				})
			}
			if m.ReceiverID == actor.ID && !m.Read {
				out[i].Unread++
			}
		}
		users, err := r.Users().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, u := range users {
			if i, ok := index[u.ID]; ok {
				out[i].CounterpartName = u.DisplayName()
			}
		}
		return nil
	})
	if out == nil && err == nil {
		out = []domain.Conversation{}
	}
	return out, err
}

// BulkSend writes one message per member of the resolved target group.
func (s *MessagingService) BulkSend(ctx context.Context, actor domain.Actor, group, content string) (*ports.BulkResult, error) {
	target, err := domain.ParseTargetGroup(group)
	if err != nil {
		return nil, err
	}
	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}

	var sent int
	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		sender, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		institutionID, err := requireStaff(sender)
		if err != nil {
			return err
		}
		recipients, err := resolveGroup(ctx, r, institutionID, target)
		if err != nil {
			return err
		}
		now := nowUTC()
		for _, id := range recipients {
			if id == sender.ID {
				continue
			}
			msg := domain.Message{
				ID:         uuid.NewString(),
				SenderID:   sender.ID,
				ReceiverID: id,
				Content:    content,
				CreatedAt:  now,
			}
			if err := r.Messages().Create(ctx, msg); err != nil {
				return err
			}
			sent++
		}
		if sent == 0 {
			return domain.Errorf(domain.KindEmptyGroup, "Nenhum destinatário encontrado para o grupo selecionado")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("message", "bulk")
	s.logger.Info("bulk message sent", zap.String("group", string(target)), zap.Int("recipients", sent))
	return &ports.BulkResult{Group: target, Recipients: sent}, nil
}

// resolveGroup maps a target group onto recipient ids. Plain groups come from the linked
// members by role; approved groups come from confirmed enrollments in the institution.
func resolveGroup(ctx context.Context, r ports.Repositories, institutionID string, group domain.TargetGroup) ([]string, error) {
	switch group {
	case domain.GroupParents, domain.GroupCuidadores, domain.GroupAll:
		members, err := r.InstitutionLinks().ListMembers(ctx, institutionID)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, m := range members {
			switch {
			case group == domain.GroupAll,
				group == domain.GroupParents && m.Role == domain.RoleParent,
				group == domain.GroupCuidadores && m.Role == domain.RoleCuidador:
				ids = append(ids, m.ID)
			}
		}
		return uniqueStrings(ids), nil
	case domain.GroupApprovedParents, domain.GroupApprovedCuidadores, domain.GroupApprovedAll:
		var ids []string
		if group != domain.GroupApprovedCuidadores {
			parents, err := r.Enrollments().ConfirmedParentIDs(ctx, institutionID)
			if err != nil {
				return nil, err
			}
			ids = append(ids, parents...)
		}
		if group != domain.GroupApprovedParents {
			cuidadores, err := r.CuidadorEnrollments().ConfirmedCuidadorIDs(ctx, institutionID)
			if err != nil {
				return nil, err
			}
			ids = append(ids, cuidadores...)
		}
		return uniqueStrings(ids), nil
	default:
		return nil, domain.Errorf(domain.KindValidation, "Grupo de destinatários inválido: %q", group)
	}
}
