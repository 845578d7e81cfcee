package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		code    Code
		message string
	}{
		{"unauthenticated", Unauthenticated("authentication required"), CodeUnauthenticated, "authentication required"},
		{"forbidden", Forbidden("admins only"), CodeForbidden, "admins only"},
		{"not found", NotFound("shipment %q not found", "s-1"), CodeNotFound, `shipment "s-1" not found`},
		{"invalid input", InvalidInput("bad value %d", 7), CodeInvalidInput, "bad value 7"},
		{"upstream", Upstream("query failed", errors.New("timeout")), CodeUpstreamFailure, "query failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.Equal(t, map[string]interface{}{"code": string(tt.code)}, tt.err.Extensions())
		})
	}
}

func TestUpstream_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("query failed", cause)

	require.ErrorIs(t, err, cause)
	// The cause stays out of the caller-facing message.
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("gone")))
	assert.Equal(t, CodeForbidden, CodeOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, CodeUpstreamFailure, CodeOf(errors.New("plain error")))
}
