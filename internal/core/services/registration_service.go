package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

const minPasswordLength = 8

type RegistrationService struct {
	store  ports.Store
	logger *zap.Logger
}

func NewRegistrationService(store ports.Store, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{store: store, logger: logger}
}

// Register creates a user account. The role is fixed here and never changes afterwards.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	fields := map[string]string{}
	email := normaliseEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "E-mail inválido"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("A senha deve ter pelo menos %d caracteres", minPasswordLength)
	}
	required(fields, "name", in.Name, "Nome é obrigatório")
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		fields["role"] = "Perfil inválido"
	}
	switch role {
	case domain.RoleInstitution:
		required(fields, "institution_name", in.InstitutionName, "Nome da instituição é obrigatório")
	case domain.RoleCoordinator:
		required(fields, "institution_id", in.InstitutionID, "Instituição é obrigatória para coordenadores")
	case domain.RoleParent, domain.RoleCuidador:
	}
	if err := validationResult(fields); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    nowUTC(),
	}
	if role == domain.RoleInstitution {
		user.InstitutionName = strings.TrimSpace(in.InstitutionName)
	}

	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if role == domain.RoleCoordinator {
			inst, err := r.Users().GetByID(ctx, in.InstitutionID)
			if err != nil {
				return notFound(err, "Instituição")
			}
			if inst.Role != domain.RoleInstitution {
				return domain.NotFound("Instituição")
			}
			user.InstitutionID = inst.ID
		}
		if _, err := r.Users().FindByEmail(ctx, email); err == nil {
			return domain.Errorf(domain.KindAlreadyExists, "Este e-mail já está cadastrado")
		} else if !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return domain.Errorf(domain.KindAlreadyExists, "Este e-mail já está cadastrado")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}
