package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redb0/slogwire/middlewares"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	t.Run("formats panic value in message", func(t *testing.T) {
		t.Parallel()

		err := &middlewares.PanicError{Value: "boom"}
		require.Equal(t, "panic: boom", err.Error())
	})

	t.Run("formats non-string panic values", func(t *testing.T) {
		t.Parallel()

		err := &middlewares.PanicError{Value: 42}
		require.Equal(t, "panic: 42", err.Error())
	})

	t.Run("exposes captured stack", func(t *testing.T) {
		t.Parallel()

		stack := []byte("goroutine 1 [running]:")
		err := &middlewares.PanicError{Value: "boom", Stack: stack}
		require.Equal(t, stack, err.StackTrace())
	})

	t.Run("wraps with fmt and stays matchable", func(t *testing.T) {
		t.Parallel()

		pe := &middlewares.PanicError{Value: "boom"}
		wrapped := fmt.Errorf("request failed: %w", pe)

		require.True(t, middlewares.IsPanicError(wrapped))

		got, ok := middlewares.AsPanicError(wrapped)
		require.True(t, ok)
		require.Equal(t, "boom", got.Value)
	})
}

func TestPanicErrorHelpers(t *testing.T) {
	t.Parallel()

	t.Run("IsPanicError returns false for non-panic error", func(t *testing.T) {
		t.Parallel()

		require.False(t, middlewares.IsPanicError(http.ErrNoCookie))
	})

	t.Run("IsPanicError returns false for nil", func(t *testing.T) {
		t.Parallel()

		require.False(t, middlewares.IsPanicError(nil))
	})

	t.Run("AsPanicError returns false for non-panic error", func(t *testing.T) {
		t.Parallel()

		_, ok := middlewares.AsPanicError(errors.New("plain"))
		require.False(t, ok)
	})
}
