package repository

import (
	"context"
	"sort"
	"time"

	"github.com/grubk/cypress-clientside/internal/connection"
	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
	"github.com/grubk/cypress-clientside/internal/matchmaker"
)

// RecordSwipe inserts one directed edge for the caller. Edges are
// append-only: a repeated swipe on the same target inserts another row
// rather than rejecting or overwriting.
func (r *Repository) RecordSwipe(ctx context.Context, targetID string, action domain.SwipeAction) error {
	session, err := r.requireSession()
	if err != nil {
		return err
	}
	if targetID == "" || targetID == session.UserID {
		return clierr.Validation("You cannot swipe on yourself.")
	}

	var dbAction string
	switch action {
	case domain.SwipeConnect:
		dbAction = db.ActionLike
	case domain.SwipeDismiss:
		dbAction = db.ActionPass
	default:
		return clierr.Validation("Unknown swipe action.")
	}

	edge := db.Edge{ActorID: session.UserID, TargetID: targetID, Action: dbAction}
	if err := r.appCtx.DB.WithContext(ctx).Create(&edge).Error; err != nil {
		// write-style: propagate so the caller can revert optimistic state
		return clierr.Map("record swipe", err)
	}
	return nil
}

// GetIncomingRequests computes the pending reciprocation set: users with
// a like edge toward the caller that the caller has not responded to
// since. A pass issued before the incoming like does not shield it, so a
// dismissed user who later likes the dismisser still shows up.
func (r *Repository) GetIncomingRequests(ctx context.Context) ([]domain.MatchCandidate, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	edges, err := r.edgesInvolving(ctx, session.UserID)
	if err != nil {
		r.appCtx.Logger.Warn("incoming requests: edge load failed", "err", err)
		return []domain.MatchCandidate{}, nil
	}

	// earliest inbound like per actor
	inboundLike := map[string]db.Edge{}
	for _, e := range edges {
		if e.TargetID == session.UserID && e.Action == db.ActionLike {
			if _, ok := inboundLike[e.ActorID]; !ok {
				inboundLike[e.ActorID] = e
			}
		}
	}

	var pending []db.Edge
	for actor, like := range inboundLike {
		responded := false
		for _, e := range edges {
			if e.ActorID != session.UserID || e.TargetID != actor {
				continue
			}
			// a like back means the pair is mutual; any edge after the
			// incoming like is a response to it
			if e.Action == db.ActionLike || e.ID > like.ID {
				responded = true
				break
			}
		}
		if !responded {
			pending = append(pending, like)
		}
	}

	// most recent request first
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID > pending[j].ID })

	return r.enrichCandidates(ctx, session.UserID, actorIDs(pending)), nil
}

// RespondToRequest records the caller's own edge for an incoming
// request. On ACCEPT the now-connected user's profile comes back; the
// mutual connection itself materializes from the edge aggregate, not
// from this call. DECLINE returns nil.
func (r *Repository) RespondToRequest(ctx context.Context, targetID string, action domain.RequestResponse) (*domain.MatchCandidate, error) {
	var swipe domain.SwipeAction
	switch action {
	case domain.RespondAccept:
		swipe = domain.SwipeConnect
	case domain.RespondDecline:
		swipe = domain.SwipeDismiss
	default:
		return nil, clierr.Validation("Unknown request response.")
	}

	if err := r.RecordSwipe(ctx, targetID, swipe); err != nil {
		return nil, err
	}
	if action == domain.RespondDecline {
		return nil, nil
	}

	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}
	candidates := r.enrichCandidates(ctx, session.UserID, []string{targetID})
	if len(candidates) == 0 {
		// counterpart profile missing; still a successful accept
		stub := domain.MatchCandidate{Profile: domain.Profile{ID: targetID, DisplayName: "Unknown User"}}
		return &stub, nil
	}
	return &candidates[0], nil
}

// GetConnections loads all mutual connections for the caller and
// resolves the counterpart's display profile for each.
func (r *Repository) GetConnections(ctx context.Context) ([]domain.ConnectionSummary, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	edges, err := r.edgesInvolving(ctx, session.UserID)
	if err != nil {
		r.appCtx.Logger.Warn("connections: edge load failed", "err", err)
		return []domain.ConnectionSummary{}, nil
	}

	type pair struct {
		peerID    string
		matchedAt time.Time
	}
	var pairs []pair
	for _, peerID := range counterparts(session.UserID, edges) {
		if connection.Derive(session.UserID, peerID, edges) != connection.Mutual {
			continue
		}
		pairs = append(pairs, pair{peerID: peerID, matchedAt: secondLikeAt(session.UserID, peerID, edges)})
	}

	// newest connection first
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].matchedAt.After(pairs[j].matchedAt) })

	ids := make([]string, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, p.peerID)
	}
	profiles := r.profilesByID(ctx, ids)

	summaries := make([]domain.ConnectionSummary, 0, len(pairs))
	for _, p := range pairs {
		peer, ok := profiles[p.peerID]
		if !ok {
			peer = domain.Profile{ID: p.peerID, DisplayName: "Unknown User"}
		}
		summaries = append(summaries, domain.ConnectionSummary{Peer: peer, MatchedAt: p.matchedAt})
	}
	return summaries, nil
}

// --- edge helpers ---

// edgesInvolving loads every edge touching the given user in insert
// order, which derivations rely on for first-decision-wins semantics.
func (r *Repository) edgesInvolving(ctx context.Context, userID string) ([]db.Edge, error) {
	var edges []db.Edge
	err := r.appCtx.DB.WithContext(ctx).
		Where("actor_id = ? OR target_id = ?", userID, userID).
		Order("id ASC").
		Find(&edges).Error
	return edges, err
}

func counterparts(userID string, edges []db.Edge) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range edges {
		other := e.TargetID
		if e.ActorID != userID {
			other = e.ActorID
		}
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			out = append(out, other)
		}
	}
	return out
}

// secondLikeAt is the creation time of the later of the two first like
// edges, i.e. when the mutual connection materialized.
func secondLikeAt(userID, peerID string, edges []db.Edge) time.Time {
	var latest time.Time
	found := map[string]bool{}
	for _, e := range edges {
		if e.Action != db.ActionLike {
			continue
		}
		dir := e.ActorID + ">" + e.TargetID
		if (e.ActorID == userID && e.TargetID == peerID) || (e.ActorID == peerID && e.TargetID == userID) {
			if !found[dir] {
				found[dir] = true
				if e.CreatedAt.After(latest) {
					latest = e.CreatedAt
				}
			}
		}
	}
	return latest
}

func actorIDs(edges []db.Edge) []string {
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.ActorID)
	}
	return out
}

// profilesByID loads profiles in bulk; lookups that fail degrade to
// missing entries, never errors.
func (r *Repository) profilesByID(ctx context.Context, ids []string) map[string]domain.Profile {
	out := map[string]domain.Profile{}
	if len(ids) == 0 {
		return out
	}
	var rows []db.Profile
	if err := r.appCtx.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		r.appCtx.Logger.Warn("bulk profile load failed", "err", err)
		return out
	}
	for _, row := range rows {
		out[row.ID] = toDomainProfile(row)
	}
	return out
}

// enrichCandidates resolves ids to profiles and attaches the viewer's
// common-interest overlap, preserving the given order.
func (r *Repository) enrichCandidates(ctx context.Context, viewerID string, ids []string) []domain.MatchCandidate {
	var viewerInterests []domain.Interest
	if me, err := r.profileRow(ctx, viewerID); err == nil {
		viewerInterests = toDomainProfile(*me).Interests
	}

	profiles := r.profilesByID(ctx, ids)
	out := make([]domain.MatchCandidate, 0, len(ids))
	for _, id := range ids {
		p, ok := profiles[id]
		if !ok {
			continue
		}
		out = append(out, domain.MatchCandidate{
			Profile:         p,
			CommonInterests: matchmaker.CommonInterests(viewerInterests, p.Interests),
		})
	}
	return out
}
