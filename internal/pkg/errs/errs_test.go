package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError_KnownCode(t *testing.T) {
	err := NewError(ErrGroupNotFound)

	var custom *CustomError
	require.ErrorAs(t, err, &custom)
	require.Equal(t, ErrGroupNotFound, custom.Code)
	require.Equal(t, 404, custom.Status)
	require.NotEmpty(t, custom.Message)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(999999)

	var custom *CustomError
	require.ErrorAs(t, err, &custom)
	require.Equal(t, ErrUnknown, custom.Code)
	require.Equal(t, 500, custom.Status)
}

func TestCustomError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("resolving fan-out: %w", NewError(ErrGroupNotFound))

	require.True(t, errors.Is(err, NewError(ErrGroupNotFound)))
	require.False(t, errors.Is(err, NewError(ErrUserNotFound)))
}
