package store_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grubk/cypress-clientside/internal/app"
	"github.com/grubk/cypress-clientside/internal/cache"
	"github.com/grubk/cypress-clientside/internal/config"
	"github.com/grubk/cypress-clientside/internal/db"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
	"github.com/grubk/cypress-clientside/internal/store"
)

func setupAuth(t *testing.T) (*app.AppContext, *config.Config) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.Account{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.New(gdb, cache.NewRedisCache(cfg), logger), cfg
}

func TestSignUpMintsRestorableSession(t *testing.T) {
	ctx := context.Background()
	appCtx, cfg := setupAuth(t)
	auth := store.NewAuth(appCtx, cfg, store.NewMemoryTokenStore())

	session, err := auth.SignUp(ctx, "ana@campus.edu", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.UserID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	restored := auth.CurrentSession()
	require.NotNil(t, restored)
	assert.Equal(t, session.UserID, restored.UserID)
	assert.Equal(t, "ana@campus.edu", restored.Email)

	auth.SignOut()
	assert.Nil(t, auth.CurrentSession())
}

func TestSignInWrongPassword(t *testing.T) {
	ctx := context.Background()
	appCtx, cfg := setupAuth(t)
	auth := store.NewAuth(appCtx, cfg, store.NewMemoryTokenStore())

	_, err := auth.SignUp(ctx, "ana@campus.edu", "password123")
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, "ana@campus.edu", "nope-nope-nope")
	require.True(t, clierr.IsAuth(err))
	assert.Equal(t, "Incorrect email or password.", err.Error())

	// unknown emails get the same message as wrong passwords
	_, err = auth.SignIn(ctx, "ghost@campus.edu", "password123")
	require.True(t, clierr.IsAuth(err))
	assert.Equal(t, "Incorrect email or password.", err.Error())
}

func TestSignInUnconfirmedAccount(t *testing.T) {
	ctx := context.Background()
	appCtx, cfg := setupAuth(t)
	auth := store.NewAuth(appCtx, cfg, store.NewMemoryTokenStore())

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, appCtx.DB.Create(&db.Account{
		ID:           "pending-account",
		Email:        "pending@campus.edu",
		PasswordHash: string(hash),
	}).Error)

	// the zero-valued flag must survive the insert; a column default
	// would silently confirm the account
	var stored db.Account
	require.NoError(t, appCtx.DB.First(&stored, "id = ?", "pending-account").Error)
	require.False(t, stored.Confirmed)

	_, err = auth.SignIn(ctx, "pending@campus.edu", "password123")
	require.True(t, clierr.IsAuth(err))
	assert.Equal(t, "Please confirm your email address before signing in.", err.Error())
}

func TestExpiredSessionIsNotAnError(t *testing.T) {
	ctx := context.Background()
	appCtx, cfg := setupAuth(t)
	cfg.Auth.SessionTTL = -time.Minute

	tokens := store.NewMemoryTokenStore()
	auth := store.NewAuth(appCtx, cfg, tokens)

	_, err := auth.SignUp(ctx, "ana@campus.edu", "password123")
	require.NoError(t, err)

	// the token expired in the past; restoring quietly drops it
	assert.Nil(t, auth.CurrentSession())
	assert.Empty(t, tokens.Load())
}

func TestTamperedTokenIsDropped(t *testing.T) {
	appCtx, cfg := setupAuth(t)
	tokens := store.NewMemoryTokenStore()
	tokens.Save("not.a.jwt")

	auth := store.NewAuth(appCtx, cfg, tokens)
	assert.Nil(t, auth.CurrentSession())
	assert.Empty(t, tokens.Load())
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/session"
	tokens := &store.FileTokenStore{Path: path}

	assert.Empty(t, tokens.Load())
	tokens.Save("token-value")
	assert.Equal(t, "token-value", tokens.Load())

	// a second store over the same path sees the persisted token
	second := &store.FileTokenStore{Path: path}
	assert.Equal(t, "token-value", second.Load())

	tokens.Clear()
	assert.Empty(t, tokens.Load())
}
