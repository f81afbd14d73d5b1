// Package repository is the single mediator between domain operations
// and the remote store. It owns field-name translation and response
// shaping; every other component calls through it.
package repository

import (
	"github.com/grubk/cypress-clientside/internal/app"
	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
	"github.com/grubk/cypress-clientside/internal/store"
)

const msgNotSignedIn = "You need to be signed in."

// Repository translates domain operations into remote store calls.
type Repository struct {
	appCtx  *app.AppContext
	auth    *store.Auth
	channel *store.Channel
}

// New creates a Repository bound to the given dependencies. The store
// capabilities are injected so tests can wire their own DB and Redis.
func New(appCtx *app.AppContext, auth *store.Auth, channel *store.Channel) *Repository {
	return &Repository{
		appCtx:  appCtx,
		auth:    auth,
		channel: channel,
	}
}

// CurrentUserID returns the signed-in user's id, or "" when nobody is
// signed in.
func (r *Repository) CurrentUserID() string {
	if s := r.auth.CurrentSession(); s != nil {
		return s.UserID
	}
	return ""
}

// requireSession returns the current session or an AuthError with a
// stable message when nobody is signed in.
func (r *Repository) requireSession() (*store.Session, error) {
	if s := r.auth.CurrentSession(); s != nil {
		return s, nil
	}
	return nil, clierr.Auth(msgNotSignedIn)
}

// --- row <-> domain shaping ---

func toDomainProfile(row db.Profile) domain.Profile {
	p := domain.Profile{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Bio:         row.Bio,
		HomeRegion:  row.HomeRegion,
		PhotoURL:    row.PhotoURL,
		Verified:    row.IsVerified,
		Searchable:  row.IsSearchable,
		Settings:    row.Settings,
		CreatedAt:   row.CreatedAt,
	}
	if row.Major != nil {
		m := domain.Major(*row.Major)
		p.Major = &m
	}
	for _, in := range row.Interests {
		p.Interests = append(p.Interests, domain.Interest(in))
	}
	for _, l := range row.Languages {
		p.Languages = append(p.Languages, domain.Language(l))
	}
	return p
}

func interestsToStrings(interests []domain.Interest) []string {
	out := make([]string, 0, len(interests))
	for _, in := range interests {
		out = append(out, string(in))
	}
	return out
}

func languagesToStrings(languages []domain.Language) []string {
	out := make([]string, 0, len(languages))
	for _, l := range languages {
		out = append(out, string(l))
	}
	return out
}

func toDomainProfiles(rows []db.Profile) []domain.Profile {
	out := make([]domain.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainProfile(row))
	}
	return out
}
