// Package connection encodes the swipe/request/response state machine.
// State is derived purely from the directed edge set; nothing is stored.
package connection

import "github.com/grubk/cypress-clientside/internal/db"

type State string

const (
	// Unknown: no edge in either direction; candidate is discoverable.
	Unknown State = "unknown"
	// ViewerPending: the viewer decided, the other side has not.
	ViewerPending State = "viewer_pending"
	// IncomingPending: the other side liked the viewer, who has not
	// decided; shows up in the viewer's incoming requests.
	IncomingPending State = "incoming_pending"
	// Mutual: like edges in both directions. Terminal.
	Mutual State = "mutual"
	// ResolvedPass: a pass in either direction with no mutual like.
	// Terminal; no un-pass exists.
	ResolvedPass State = "resolved_pass"
)

// Derive computes the state of the (viewer, other) ordered pair from its
// edges. Edges are append-only, so the earliest decision per direction is
// the one that counts; later duplicates are ignored.
func Derive(viewerID, otherID string, edges []db.Edge) State {
	outbound, outOK := firstDecision(viewerID, otherID, edges)
	inbound, inOK := firstDecision(otherID, viewerID, edges)

	switch {
	case !outOK && !inOK:
		return Unknown

	case outOK && inOK:
		if outbound == db.ActionLike && inbound == db.ActionLike {
			return Mutual
		}
		return ResolvedPass

	case outOK:
		if outbound == db.ActionPass {
			return ResolvedPass
		}
		return ViewerPending

	default: // inbound only
		if inbound == db.ActionPass {
			return ResolvedPass
		}
		return IncomingPending
	}
}

// firstDecision returns the action of the earliest edge actor -> target.
// Callers pass edges in creation order, which insert-only tables give for
// free.
func firstDecision(actorID, targetID string, edges []db.Edge) (string, bool) {
	for _, e := range edges {
		if e.ActorID == actorID && e.TargetID == targetID {
			return e.Action, true
		}
	}
	return "", false
}
