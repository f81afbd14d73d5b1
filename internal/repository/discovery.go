package repository

import (
	"context"
	"strings"

	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	"github.com/grubk/cypress-clientside/internal/matchmaker"
)

// GetMatchQueue returns the ranked discovery queue for the caller.
//
// Exclusions: self, every user swiped in either direction (which covers
// mutual connections) and non-searchable or major-less profiles. An
// unset own major gates discovery entirely. Transient store failures
// degrade to an empty queue with a logged warning.
func (r *Repository) GetMatchQueue(ctx context.Context) ([]domain.MatchCandidate, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	me, err := r.profileRow(ctx, session.UserID)
	if err != nil {
		r.appCtx.Logger.Warn("match queue: own profile unavailable", "err", err)
		return []domain.MatchCandidate{}, nil
	}
	if me.Major == nil {
		// discovery is gated on profile completeness
		return []domain.MatchCandidate{}, nil
	}

	edges, err := r.edgesInvolving(ctx, session.UserID)
	if err != nil {
		r.appCtx.Logger.Warn("match queue: edge load failed", "err", err)
		return []domain.MatchCandidate{}, nil
	}

	excluded := []string{session.UserID}
	seen := map[string]struct{}{session.UserID: {}}
	for _, e := range edges {
		other := e.TargetID
		if e.ActorID != session.UserID {
			other = e.ActorID
		}
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			excluded = append(excluded, other)
		}
	}

	var rows []db.Profile
	err = r.appCtx.DB.WithContext(ctx).
		Where("is_searchable = ?", true).
		Where("major IS NOT NULL").
		Where("major <> ?", *me.Major).
		Where("id NOT IN ?", excluded).
		Find(&rows).Error
	if err != nil {
		r.appCtx.Logger.Warn("match queue: candidate load failed", "err", err)
		return []domain.MatchCandidate{}, nil
	}

	viewer := toDomainProfile(*me)
	return matchmaker.Rank(viewer.Interests, toDomainProfiles(rows)), nil
}

// SearchUsers runs a case-insensitive substring match against display
// name, major and email, restricted to searchable profiles excluding
// self. An empty query returns an empty result without issuing a query.
func (r *Repository) SearchUsers(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.MatchCandidate{}, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var rows []db.Profile
	err = r.appCtx.DB.WithContext(ctx).
		Where("is_searchable = ?", true).
		Where("id <> ?", session.UserID).
		Where("LOWER(display_name) LIKE ? OR LOWER(major) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern).
		Limit(matchmaker.PageSize).
		Find(&rows).Error
	if err != nil {
		r.appCtx.Logger.Warn("search failed", "query", query, "err", err)
		return []domain.MatchCandidate{}, nil
	}

	var viewerInterests []domain.Interest
	if me, err := r.profileRow(ctx, session.UserID); err == nil {
		viewerInterests = toDomainProfile(*me).Interests
	}

	results := make([]domain.MatchCandidate, 0, len(rows))
	for _, row := range rows {
		p := toDomainProfile(row)
		results = append(results, domain.MatchCandidate{
			Profile:         p,
			CommonInterests: matchmaker.CommonInterests(viewerInterests, p.Interests),
		})
	}
	return results, nil
}
