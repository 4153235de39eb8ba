package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu7/geoduel-backend/internal/apperr"
)

var errDuplicate = apperr.New(apperr.KindConflict, "DUPLICATE", "already exists")

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind   apperr.Kind
		status int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindConflict, http.StatusBadRequest},
		{apperr.KindAuth, http.StatusUnauthorized},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindTransient, http.StatusServiceUnavailable},
		{apperr.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.kind.Status())
			assert.Equal(t, tt.status, apperr.New(tt.kind, "X", "x").Status)
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := oops.Code("STORE_FAILED").With("user_id", 7).Wrap(errDuplicate)
	double := fmt.Errorf("register: %w", wrapped)

	e, ok := apperr.As(double)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE", e.Code)
	assert.True(t, errors.Is(double, errDuplicate))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(double))
}

func TestAsReturnsOutermost(t *testing.T) {
	inner := apperr.New(apperr.KindNotFound, "MISSING", "missing")
	err := fmt.Errorf("%w: %w", errDuplicate, inner)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE", e.Code)
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(nil))
}

func TestWithStatusKeepsOriginal(t *testing.T) {
	custom := errDuplicate.WithStatus(http.StatusConflict)

	assert.Equal(t, http.StatusConflict, custom.Status)
	assert.Equal(t, http.StatusBadRequest, errDuplicate.Status)
	assert.Equal(t, errDuplicate.Code, custom.Code)
}
