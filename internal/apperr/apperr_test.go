package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := map[Kind]int{
		KindNotFound:          http.StatusNotFound,
		KindForbidden:         http.StatusForbidden,
		KindUnauthorized:      http.StatusUnauthorized,
		KindInvalidState:      http.StatusConflict,
		KindInsufficientStock: http.StatusConflict,
		KindValidation:        http.StatusBadRequest,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("approve order 7: %w", InsufficientStock())
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, Is(err, KindInsufficientStock))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternalHidesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := Internal(cause)
	assert.Equal(t, MsgInternal, err.Message)
	assert.ErrorIs(t, err, cause)
}
