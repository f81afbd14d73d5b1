package store

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/grubk/cypress-clientside/internal/app"
	"github.com/grubk/cypress-clientside/internal/config"
	"github.com/grubk/cypress-clientside/internal/db"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
)

const (
	maxLoginAttempts = 5
	loginFailWindow  = 15 * time.Minute
)

// Stable user-facing auth messages, mapped from underlying conditions.
const (
	msgBadCredentials = "Incorrect email or password."
	msgUnconfirmed    = "Please confirm your email address before signing in."
	msgRateLimited    = "Too many sign-in attempts. Please try again later."
	msgEmailTaken     = "An account with this email already exists."
)

// Session is the authenticated identity the store hands back.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth is the store's auth capability: account creation, credential
// checks and signed session tokens.
type Auth struct {
	appCtx *app.AppContext
	secret []byte
	ttl    time.Duration
	tokens TokenStore
}

func NewAuth(appCtx *app.AppContext, cfg *config.Config, tokens TokenStore) *Auth {
	return &Auth{
		appCtx: appCtx,
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    cfg.Auth.SessionTTL,
		tokens: tokens,
	}
}

// SignUp creates the auth identity and returns a fresh session. The
// profile row is the caller's responsibility and is written separately.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var existing db.Account
	err := a.appCtx.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, clierr.Conflict(msgEmailTaken)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clierr.Map("signup", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, clierr.Map("signup", err)
	}

	account := db.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Confirmed:    true,
	}
	if err := a.appCtx.DB.WithContext(ctx).Create(&account).Error; err != nil {
		// race after the pre-check
		return nil, clierr.Map("signup", err)
	}

	return a.mintSession(account)
}

// SignIn checks credentials and returns a session. Failed attempts count
// toward a windowed rate limit kept in Redis.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if n, err := a.appCtx.RedisCache.FailedLoginCount(ctx, email); err == nil && n >= maxLoginAttempts {
		return nil, clierr.Auth(msgRateLimited)
	}

	var account db.Account
	err := a.appCtx.DB.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_, _ = a.appCtx.RedisCache.RecordFailedLogin(ctx, email, loginFailWindow)
		return nil, clierr.Auth(msgBadCredentials)
	}
	if err != nil {
		return nil, clierr.Map("login", err)
	}

	if !account.Confirmed {
		return nil, clierr.Auth(msgUnconfirmed)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		_, _ = a.appCtx.RedisCache.RecordFailedLogin(ctx, email, loginFailWindow)
		return nil, clierr.Auth(msgBadCredentials)
	}

	_ = a.appCtx.RedisCache.ClearFailedLogins(ctx, email)
	return a.mintSession(account)
}

// SignOut drops the stored session token.
func (a *Auth) SignOut() {
	a.tokens.Clear()
}

// CurrentSession returns the session backing the stored token, or nil
// when no valid session exists. An expired or malformed token is not an
// error; it just means "not signed in".
func (a *Auth) CurrentSession() *Session {
	token := a.tokens.Load()
	if token == "" {
		return nil
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		a.tokens.Clear()
		return nil
	}

	return &Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

func (a *Auth) mintSession(account db.Account) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(a.ttl)

	claims := sessionClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, clierr.Map("session", err)
	}

	a.tokens.Save(signed)
	return &Session{
		UserID:    account.ID,
		Email:     account.Email,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}
