package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/middleware"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/observability"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type responder struct {
	logger *zap.Logger
}

func newResponder(logger *zap.Logger) responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return responder{logger: logger}
}

func (rs responder) json(w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

// fail maps a service error onto its HTTP status. Anything that is not a business
// rejection is a 500 and is reported to Sentry.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		rs.json(w, statusFor(de.Kind), errorResponse{Error: string(de.Kind), Message: de.Error(), Fields: de.Fields})
		return
	}
	rs.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	observability.CaptureRequestErr(r, err)
	rs.json(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "Erro interno do servidor"})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindForbidden, domain.KindNotOwned, domain.KindNotConnected:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAlreadyExists, domain.KindAlreadyConnected, domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindInvalidPair, domain.KindAgeOutOfRange, domain.KindEmptyGroup,
		domain.KindNoInstitution, domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and runs the struct validation tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Errorf(domain.KindValidation, "Corpo da requisição inválido")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fieldMessage(fe)
			}
			return domain.NewValidationError(fields)
		}
		return err
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório"
	case "email":
		return "E-mail inválido"
	case "min":
		return fmt.Sprintf("Valor mínimo: %s", fe.Param())
	case "max":
		return fmt.Sprintf("Valor máximo: %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Deve ser um de: %s", fe.Param())
	case "uuid4", "uuid":
		return "Identificador inválido"
	case "url":
		return "URL inválida"
	default:
		return "Valor inválido"
	}
}

// actor returns the authenticated caller. Routes reaching a handler without one are a
// wiring mistake, reported as unauthenticated.
func actor(r *http.Request) (domain.Actor, error) {
	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		return domain.Actor{}, domain.Errorf(domain.KindUnauthenticated, "Autenticação necessária")
	}
	return a, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// list keeps empty collections encoded as [] instead of null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
