package chat_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grubk/cypress-clientside/internal/app"
	"github.com/grubk/cypress-clientside/internal/cache"
	"github.com/grubk/cypress-clientside/internal/chat"
	"github.com/grubk/cypress-clientside/internal/config"
	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
	"github.com/grubk/cypress-clientside/internal/repository"
	"github.com/grubk/cypress-clientside/internal/store"
)

type chatFixture struct {
	t       *testing.T
	cfg     *config.Config
	appCtx  *app.AppContext
	channel *store.Channel
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.Account{}, &db.Profile{}, &db.Edge{}, &db.Message{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, redisCache, logger)

	return &chatFixture{
		t:       t,
		cfg:     cfg,
		appCtx:  appCtx,
		channel: store.NewChannel(redisCache, logger),
	}
}

// signupUser returns a signed-in repository plus a synchronizer over it.
func (f *chatFixture) signupUser(email string) (*repository.Repository, *chat.Synchronizer, string) {
	f.t.Helper()
	auth := store.NewAuth(f.appCtx, f.cfg, store.NewMemoryTokenStore())
	repo := repository.New(f.appCtx, auth, f.channel)
	profile, err := repo.Signup(context.Background(), email, "password123")
	require.NoError(f.t, err)
	sync := chat.NewSynchronizer(repo, f.appCtx.Logger)
	f.t.Cleanup(sync.Close)
	return repo, sync, profile.ID
}

func TestOpenLoadsHistoryAndReusesConversation(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	alice, _, _ := f.signupUser("alice@campus.edu")
	_, bobSync, bobID := f.signupUser("bob@campus.edu")
	aliceID := alice.CurrentUserID()

	_, err := alice.SendMessage(ctx, bobID, domain.TextContent{Body: "written before open"})
	require.NoError(t, err)

	conv, err := bobSync.Open(ctx, aliceID)
	require.NoError(t, err)
	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "written before open", msgs[0].Text())

	again, err := bobSync.Open(ctx, aliceID)
	require.NoError(t, err)
	assert.Same(t, conv, again)
}

func TestLiveMessageAppends(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	alice, _, _ := f.signupUser("alice@campus.edu")
	_, bobSync, bobID := f.signupUser("bob@campus.edu")
	aliceID := alice.CurrentUserID()

	conv, err := bobSync.Open(ctx, aliceID)
	require.NoError(t, err)
	require.Empty(t, conv.Messages())

	sent, err := alice.SendMessage(ctx, bobID, domain.TextContent{Body: "live one"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(conv.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	msgs := conv.Messages()
	assert.Equal(t, sent.ID, msgs[0].ID)
	assert.Equal(t, "live one", msgs[0].Text())

	// the same event never lands twice
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, conv.Messages(), 1)
}

func TestSendReplacesPlaceholderInPlace(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	_, aliceSync, _ := f.signupUser("alice@campus.edu")
	_, _, bobID := f.signupUser("bob@campus.edu")

	conv, err := aliceSync.Open(ctx, bobID)
	require.NoError(t, err)

	sent, err := conv.Send(ctx, domain.TextContent{Body: "optimistic hello"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Status)
	assert.False(t, strings.HasPrefix(sent.ID, "local-"))

	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, sent.ID, msgs[0].ID)
	assert.Equal(t, domain.StatusSent, msgs[0].Status)
}

func TestFailedSendKeepsErrorPlaceholder(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	_, aliceSync, _ := f.signupUser("alice@campus.edu")
	_, _, bobID := f.signupUser("bob@campus.edu")

	conv, err := aliceSync.Open(ctx, bobID)
	require.NoError(t, err)

	_, err = conv.Send(ctx, domain.TextContent{Body: "seed"})
	require.NoError(t, err)

	// an empty body is rejected by the store layer
	failed, err := conv.Send(ctx, domain.TextContent{Body: ""})
	require.True(t, clierr.IsValidation(err))
	assert.Equal(t, domain.StatusError, failed.Status)
	assert.True(t, strings.HasPrefix(failed.ID, "local-"))

	// the failed placeholder stays visible, in order, after the seed
	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.StatusSent, msgs[0].Status)
	assert.Equal(t, failed.ID, msgs[1].ID)
	assert.Equal(t, domain.StatusError, msgs[1].Status)
}

func TestReservedPartnerConversation(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	_, sync, _ := f.signupUser("ana@campus.edu")

	conv, err := sync.Open(ctx, "cypress-bot")
	require.NoError(t, err)
	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "cypress-bot", msgs[0].SenderID)
	assert.True(t, msgs[0].Read)
}

func TestMarkReadRefetchesUnreadCount(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	alice, _, _ := f.signupUser("alice@campus.edu")
	bob, bobSync, bobID := f.signupUser("bob@campus.edu")
	aliceID := alice.CurrentUserID()

	_, err := alice.SendMessage(ctx, bobID, domain.TextContent{Body: "one"})
	require.NoError(t, err)
	_, err = alice.SendMessage(ctx, bobID, domain.TextContent{Body: "two"})
	require.NoError(t, err)

	count, err := bob.UnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = bobSync.MarkRead(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	alice, _, _ := f.signupUser("alice@campus.edu")
	_, bobSync, _ := f.signupUser("bob@campus.edu")

	conv, err := bobSync.Open(ctx, alice.CurrentUserID())
	require.NoError(t, err)

	conv.Close()
	conv.Close()
	bobSync.Close()
	bobSync.Close()
}
