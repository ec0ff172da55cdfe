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
	assert.Equal(t, http.StatusBadRequest, Validation("bad").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("missing").Status())
	assert.Equal(t, http.StatusForbidden, AccessDenied("no").Status())
	assert.Equal(t, http.StatusConflict, StateConflict("stale").Status())
	assert.Equal(t, http.StatusBadRequest, Overpayment("too much").Status())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Wrap(NotFound("invoice %d not found", 7), cause)

	assert.Equal(t, "invoice 7 not found: pq: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	e, ok := As(fmt.Errorf("outer: %w", err))
	require.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "invoice 7 not found", e.Message, "client message excludes the cause")
}

func TestIsKind(t *testing.T) {
	err := StateConflict("claim moved")
	assert.True(t, IsKind(err, KindStateConflict))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("plain"), KindValidation))
	assert.False(t, IsKind(nil, KindValidation))
}
