package errors_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	clierr "github.com/grubk/cypress-clientside/internal/errors"
)

func TestMap_NilPassesThrough(t *testing.T) {
	assert.NoError(t, clierr.Map("load profile", nil))
}

func TestMap_RecordNotFound(t *testing.T) {
	err := clierr.Map("profile", gorm.ErrRecordNotFound)
	assert.True(t, clierr.IsNotFound(err))
}

func TestMap_DuplicateKeyBecomesConflict(t *testing.T) {
	err := clierr.Map("signup", stderrors.New("UNIQUE constraint failed: profiles.email"))
	assert.True(t, clierr.IsConflict(err))
	assert.Equal(t, "An account with this email already exists.", err.Error())
}

func TestMap_ContextErrorsAreTransient(t *testing.T) {
	assert.True(t, clierr.IsTransient(clierr.Map("queue", context.DeadlineExceeded)))
	assert.True(t, clierr.IsTransient(clierr.Map("queue", context.Canceled)))
}

func TestMap_ClassifiedErrorsPassThrough(t *testing.T) {
	authErr := clierr.Auth("Incorrect email or password.")
	assert.Equal(t, authErr, clierr.Map("login", authErr))

	valErr := clierr.Validation("password must be at least 8 characters")
	assert.Equal(t, valErr, clierr.Map("signup", valErr))
}

func TestMap_UnknownErrorIsTransient(t *testing.T) {
	err := clierr.Map("send message", stderrors.New("connection refused"))
	assert.True(t, clierr.IsTransient(err))
	assert.ErrorContains(t, err, "send message")
}
