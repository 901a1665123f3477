package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain error passes through wrapping", func(t *testing.T) {
		orig := NewConflict("ALREADY_SIGNED_IN", "employee already signed in today", nil)
		got := ToDomainError(fmt.Errorf("sign in: %w", orig))
		require.NotNil(t, got)
		assert.Equal(t, "ALREADY_SIGNED_IN", got.Code)
		assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		got := ToDomainError(pgx.ErrNoRows)
		assert.Equal(t, CodeNotFound, got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("fiber errors keep their status", func(t *testing.T) {
		got := ToDomainError(fiber.NewError(http.StatusBadRequest, "invalid payload"))
		assert.Equal(t, CodeBadRequest, got.Code)
		assert.Equal(t, "invalid payload", got.Message)

		got = ToDomainError(fiber.ErrNotFound)
		assert.Equal(t, CodeNotFound, got.Code)
	})

	t.Run("unknown errors hide details", func(t *testing.T) {
		got := ToDomainError(errors.New("connection refused on 10.0.0.3"))
		assert.Equal(t, CodeInternal, got.Code)
		assert.Equal(t, "internal server error", got.Message)
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	})
}

func TestHasCode(t *testing.T) {
	err := NewBadRequest("NO_SIGN_IN", "cannot sign out without signing in first", nil)
	assert.True(t, HasCode(err, "NO_SIGN_IN"))
	assert.False(t, HasCode(err, "ALREADY_SIGNED_OUT"))
	assert.False(t, HasCode(errors.New("plain"), "NO_SIGN_IN"))
}

func TestConstructorsDefaultCodes(t *testing.T) {
	assert.True(t, HasCode(NewConflict("", "dup", nil), CodeConflict))
	assert.True(t, HasCode(NewBadRequest("", "bad", nil), CodeBadRequest))
	assert.True(t, HasCode(NewNotFound("employee", nil), CodeNotFound))
	assert.Equal(t, "employee not found", NewNotFound("employee", nil).Error())
}
