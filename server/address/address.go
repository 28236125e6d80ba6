/******************************************************************************
 *
 *  Description :
 *    Audience address tokens. A token names who an activity is addressed
 *    to: everyone, the actor's followers, one user, or a plugin-defined
 *    dynamic group inside a context.
 *
 *****************************************************************************/
package address

import (
	"strings"

	"github.com/isomorphiccat/kemotown/server/plugin"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// Fixed tokens.
const (
	TokenPublic    = "public"
	TokenFollowers = "followers"

	userPrefix    = "user:"
	contextPrefix = "context:"
)

// Kind classifies a parsed token.
type Kind int

const (
	KindInvalid Kind = iota
	KindPublic
	KindFollowers
	KindUser
	KindContext
)

// Token is a parsed address token. Unknown or malformed input parses as
// KindInvalid and matches nobody.
type Token struct {
	Kind    Kind
	User    t.Uid
	Context t.Uid
	Suffix  string
}

// Parse classifies a raw address token.
func Parse(raw string) Token {
	switch {
	case raw == TokenPublic:
		return Token{Kind: KindPublic}

	case raw == TokenFollowers:
		return Token{Kind: KindFollowers}

	case strings.HasPrefix(raw, userPrefix):
		uid := t.ParseUid(raw[len(userPrefix):])
		if uid.IsZero() {
			return Token{}
		}
		return Token{Kind: KindUser, User: uid}

	case strings.HasPrefix(raw, contextPrefix):
		parts := strings.Split(raw[len(contextPrefix):], ":")
		if len(parts) != 2 || parts[1] == "" {
			return Token{}
		}
		ctx := t.ParseUid(parts[0])
		if ctx.IsZero() {
			return Token{}
		}
		return Token{Kind: KindContext, Context: ctx, Suffix: parts[1]}
	}

	return Token{}
}

// ForUser renders the direct-address token of a user.
func ForUser(uid t.Uid) string {
	return userPrefix + uid.String()
}

// ForContext renders a dynamic context token.
func ForContext(ctx t.Uid, suffix string) string {
	return contextPrefix + ctx.String() + ":" + suffix
}

// Recipients extracts the durable-notification recipient set from to/cc:
// every addressed user except the actor, de-duplicated. Broadcast tokens
// (public, followers, context groups) never produce recipients; those
// audiences are served by pull queries.
func Recipients(to, cc []string, actor t.Uid) []t.Uid {
	var out []t.Uid
	seen := make(map[t.Uid]bool)
	for _, raw := range append(append([]string{}, to...), cc...) {
		tok := Parse(raw)
		if tok.Kind != KindUser || tok.User == actor || seen[tok.User] {
			continue
		}
		seen[tok.User] = true
		out = append(out, tok.User)
	}
	return out
}

// Validate checks that every token is well-formed and that dynamic context
// tokens reference a pattern some registered plugin declares. Returns the
// first offending token, empty string if all are acceptable.
func Validate(tokens []string, reg *plugin.Registry) string {
	for _, raw := range tokens {
		tok := Parse(raw)
		switch tok.Kind {
		case KindInvalid:
			return raw
		case KindContext:
			if findPattern(reg, tok.Suffix) == nil {
				return raw
			}
		}
	}
	return ""
}

func findPattern(reg *plugin.Registry, suffix string) *plugin.AddressPattern {
	for _, rp := range reg.AllAddressPatterns() {
		if rp.Pattern.Suffix == suffix {
			return rp.Pattern
		}
	}
	return nil
}
