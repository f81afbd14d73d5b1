package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
)

const minPasswordLen = 8

// RestoreSession checks the store for an existing authenticated session
// on app start. No session is not an error; the caller gets nil and
// routes to the login screen.
func (r *Repository) RestoreSession(ctx context.Context) (*domain.Profile, error) {
	session := r.auth.CurrentSession()
	if session == nil {
		return nil, nil
	}

	var row db.Profile
	err := r.appCtx.DB.WithContext(ctx).Where("id = ?", session.UserID).First(&row).Error
	if err != nil {
		// a stored token without a profile row (or a flaky store) must
		// not block startup; treat it as "not signed in"
		r.appCtx.Logger.Warn("session restore could not load profile", "user_id", session.UserID, "err", err)
		return nil, nil
	}

	profile := toDomainProfile(row)
	return &profile, nil
}

// Login delegates the credential check to the store's auth capability
// and loads the profile row on success.
func (r *Repository) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, clierr.Validation("Email and password are required.")
	}

	session, err := r.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	var row db.Profile
	if err := r.appCtx.DB.WithContext(ctx).Where("id = ?", session.UserID).First(&row).Error; err != nil {
		r.appCtx.Logger.Error("login succeeded but profile load failed", "user_id", session.UserID, "err", err)
		return nil, clierr.Map("load profile", err)
	}

	profile := toDomainProfile(row)
	return &profile, nil
}

// Signup creates an auth identity, then inserts a profile row with
// defaults. The two writes are not transactional: if the profile insert
// fails the auth identity stays live, which is logged and accepted.
func (r *Repository) Signup(ctx context.Context, email, password string) (*domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateSignup(email, password); err != nil {
		return nil, err
	}

	session, err := r.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	row := db.Profile{
		ID:           session.UserID,
		Email:        email,
		DisplayName:  displayNameFromEmail(email),
		Languages:    []string{string(domain.LanguageEnglish)},
		Interests:    []string{},
		IsSearchable: true,
		IsVerified:   false,
		Settings:     domain.DefaultNotificationSettings(),
	}
	if err := r.appCtx.DB.WithContext(ctx).Create(&row).Error; err != nil {
		r.appCtx.Logger.Error("profile insert failed after auth signup; identity left live",
			"user_id", session.UserID, "err", err)
		return nil, clierr.Map("signup", err)
	}

	profile := toDomainProfile(row)
	return &profile, nil
}

// Logout drops the stored session.
func (r *Repository) Logout() {
	r.auth.SignOut()
}

func validateSignup(email, password string) error {
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return clierr.Validation("Please enter a valid email address.")
	}
	if !strings.HasSuffix(email, ".edu") {
		return clierr.Validation("Please use your university (.edu) email address.")
	}
	if len(password) < minPasswordLen {
		return clierr.Validation("Password must be at least 8 characters.")
	}
	return nil
}

func displayNameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	return local
}

// profileRow loads one profile by id.
func (r *Repository) profileRow(ctx context.Context, id string) (*db.Profile, error) {
	var row db.Profile
	err := r.appCtx.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clierr.NotFound("profile")
	}
	if err != nil {
		return nil, clierr.Map("load profile", err)
	}
	return &row, nil
}
