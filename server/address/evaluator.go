/******************************************************************************
 *
 *  Description :
 *    One-off visibility checks. Feed queries push audience filters into
 *    the store; the evaluator handles the single-activity case (threads,
 *    likers listings), calling plugin resolvers only for dynamic tokens.
 *
 *****************************************************************************/
package address

import (
	"context"

	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/plugin"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// FollowChecker reports whether follower has an accepted follow of followee.
type FollowChecker func(follower, followee t.Uid) (bool, error)

// Evaluator answers "can this viewer see this activity".
type Evaluator struct {
	reg         *plugin.Registry
	isFollowing FollowChecker
}

// NewEvaluator creates a visibility evaluator over the given plugin registry
// and follow-relation source.
func NewEvaluator(reg *plugin.Registry, isFollowing FollowChecker) *Evaluator {
	return &Evaluator{reg: reg, isFollowing: isFollowing}
}

// CanSee evaluates the activity's address tokens against the viewer. The
// actor always sees their own activity. Unknown tokens and resolver failures
// fail closed.
func (e *Evaluator) CanSee(ctx context.Context, act *t.Activity, viewer t.Uid) bool {
	if act == nil || act.IsDeleted() {
		return false
	}

	actor := t.ParseUid(act.Actor)
	if !viewer.IsZero() && viewer == actor {
		return true
	}

	for _, raw := range act.Addressees() {
		tok := Parse(raw)
		switch tok.Kind {
		case KindPublic:
			return true

		case KindFollowers:
			if viewer.IsZero() {
				continue
			}
			following, err := e.isFollowing(viewer, actor)
			if err != nil {
				logs.Warning.Println("address: follow check failed:", err)
				continue
			}
			if following {
				return true
			}

		case KindUser:
			if tok.User == viewer {
				return true
			}

		case KindContext:
			if viewer.IsZero() {
				continue
			}
			pattern := findPattern(e.reg, tok.Suffix)
			if pattern == nil || pattern.Resolve == nil {
				continue
			}
			match, err := pattern.Resolve(ctx, tok.Context, viewer)
			if err != nil {
				logs.Warning.Println("address: pattern resolver failed:", tok.Suffix, err)
				continue
			}
			if match {
				return true
			}
		}
	}

	return false
}
