package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind, "c", "m").Status())
		})
	}
}

func TestSentinelSurvivesWrappingAndKindChange(t *testing.T) {
	sentinel := New(KindAuthentication, "token_expired", "Your token has expired")

	wrapped := fmt.Errorf("guard: %w", sentinel)
	require.ErrorIs(t, wrapped, sentinel)

	forbidden := sentinel.WithKind(KindAuthorization)
	require.ErrorIs(t, forbidden, sentinel)
	assert.Equal(t, http.StatusForbidden, forbidden.Status())
	assert.Equal(t, http.StatusUnauthorized, sentinel.Status())
}

func TestFromWrapsForeignErrors(t *testing.T) {
	cause := errors.New("connection refused")
	got := From(cause)
	require.NotNil(t, got)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "Internal Server Error", got.Message)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, From(nil))
}

func TestKindOf(t *testing.T) {
	denied := New(KindAuthentication, "denied", "Access denied")
	assert.Equal(t, KindAuthentication, KindOf(fmt.Errorf("guard: %w", denied)))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
