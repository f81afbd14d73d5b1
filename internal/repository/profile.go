package repository

import (
	"context"

	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
)

// UpdateProfile applies a partial update scoped to the caller's own
// identity and returns the freshly reloaded profile, so the caller sees
// server-applied values rather than a locally echoed guess.
func (r *Repository) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.Profile, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	// field-name translation: only provided fields make it into the update
	var row db.Profile
	var cols []string
	if upd.DisplayName != nil {
		row.DisplayName = *upd.DisplayName
		cols = append(cols, "display_name")
	}
	if upd.Major != nil {
		m := string(*upd.Major)
		row.Major = &m
		cols = append(cols, "major")
	}
	if upd.Bio != nil {
		row.Bio = *upd.Bio
		cols = append(cols, "bio")
	}
	if upd.Interests != nil {
		row.Interests = interestsToStrings(*upd.Interests)
		cols = append(cols, "interests")
	}
	if upd.Languages != nil {
		row.Languages = languagesToStrings(*upd.Languages)
		cols = append(cols, "languages")
	}
	if upd.HomeRegion != nil {
		row.HomeRegion = *upd.HomeRegion
		cols = append(cols, "home_region")
	}
	if upd.PhotoURL != nil {
		row.PhotoURL = *upd.PhotoURL
		cols = append(cols, "photo_url")
	}
	if upd.Searchable != nil {
		row.IsSearchable = *upd.Searchable
		cols = append(cols, "is_searchable")
	}
	if upd.Settings != nil {
		row.Settings = *upd.Settings
		cols = append(cols, "settings")
	}

	if len(cols) > 0 {
		err := r.appCtx.DB.WithContext(ctx).
			Model(&db.Profile{}).
			Where("id = ?", session.UserID).
			Select(cols).
			Updates(row).Error
		if err != nil {
			return nil, clierr.Map("update profile", err)
		}
	}

	fresh, err := r.profileRow(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	profile := toDomainProfile(*fresh)
	return &profile, nil
}

// GetUser fetches a single public profile projection. A missing
// counterpart degrades to a minimal stub instead of failing, so chat and
// profile views never hard-fail.
func (r *Repository) GetUser(ctx context.Context, id string) domain.Profile {
	row, err := r.profileRow(ctx, id)
	if err != nil {
		if !clierr.IsNotFound(err) {
			r.appCtx.Logger.Warn("user lookup failed, returning stub", "user_id", id, "err", err)
		}
		return domain.Profile{ID: id, DisplayName: "Unknown User"}
	}
	return toDomainProfile(*row)
}
