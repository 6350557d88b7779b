package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
)

func TestStatusFor(t *testing.T) {
	tests := map[domain.Kind]int{
		domain.KindForbidden:        http.StatusForbidden,
		domain.KindNotOwned:         http.StatusForbidden,
		domain.KindNotConnected:     http.StatusForbidden,
		domain.KindNotFound:         http.StatusNotFound,
		domain.KindAlreadyExists:    http.StatusConflict,
		domain.KindAlreadyConnected: http.StatusConflict,
		domain.KindInvalidState:     http.StatusConflict,
		domain.KindInvalidPair:      http.StatusUnprocessableEntity,
		domain.KindAgeOutOfRange:    http.StatusUnprocessableEntity,
		domain.KindEmptyGroup:       http.StatusUnprocessableEntity,
		domain.KindNoInstitution:    http.StatusUnprocessableEntity,
		domain.KindValidation:       http.StatusUnprocessableEntity,
		domain.KindUnauthenticated:  http.StatusUnauthorized,
		domain.Kind("mystery"):      http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(kind), kind)
	}
}

func TestFail(t *testing.T) {
	rs := newResponder(nil)

	t.Run("business_error_keeps_kind_and_fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/enrollments", nil)
		err := fmt.Errorf("enroll: %w", domain.NewValidationError(map[string]string{"child_id": "Campo obrigatório"}))
		rs.fail(rec, req, err)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "validation", body.Error)
		assert.Equal(t, "Campo obrigatório", body.Fields["child_id"])
	})

	t.Run("infrastructure_error_is_opaque", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		rs.fail(rec, req, errors.New("pq: connection reset by peer"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"malformed_json", `{"email":`, nil},
		{"unknown_field", `{"email":"a@b.co","password":"x","admin":true}`, nil},
		{"missing_fields", `{}`, []string{"email", "password"}},
		{"bad_email", `{"email":"nope","password":"x"}`, []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			var dst LoginRequest
			err := decode(req, &dst)
			require.ErrorIs(t, err, domain.ErrValidation)

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			for _, f := range tt.fields {
				assert.Contains(t, de.Fields, f)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	var ok LoginRequest
	require.NoError(t, decode(req, &ok))
	assert.Equal(t, "a@b.co", ok.Email)
}

func TestDecode_CuidotecaAgeBand(t *testing.T) {
	body := `{"name":"Cantinho","hours":"8-12","days":["monday"],"max_capacity":5,"min_age":4,"max_age":2}`
	req := httptest.NewRequest(http.MethodPost, "/cuidotecas", strings.NewReader(body))
	var dst cuidotecaRequest
	err := decode(req, &dst)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Fields, "max_age")
}

func TestJSON_EmptyListEncodesAsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	newResponder(nil).json(rec, http.StatusOK, list[domain.Post](nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	newResponder(nil).json(rec, http.StatusNoContent, map[string]string{"ignored": "x"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
