package main

import (
	"io"
	"os"
	"testing"

	"github.com/isomorphiccat/kemotown/server/address"
	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/plugin"
	"github.com/isomorphiccat/kemotown/server/store/types"
)

func TestMain(m *testing.M) {
	logs.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}

// resetGlobals installs a fresh registry and evaluator with no follow
// relations, returning a cleanup function.
func resetGlobals() func() {
	globals.registry = plugin.NewRegistry()
	registerBuiltinPlugins(globals.registry)
	globals.evaluator = address.NewEvaluator(globals.registry,
		func(a, b types.Uid) (bool, error) { return false, nil })
	return func() {
		globals.registry = nil
		globals.evaluator = nil
	}
}

// newTestContext builds a persisted-looking context owned by the given user.
func newTestContext(id types.Uid, owner types.Uid) *types.Context {
	ctx := &types.Context{
		Kind:       "group",
		Slug:       "test-group",
		Name:       "Test Group",
		Owner:      owner.String(),
		Visibility: types.VisibilityPublic,
		JoinPolicy: types.JoinOpen,
	}
	ctx.Id = id.String()
	ctx.CreatedAt = types.TimeNow()
	ctx.UpdatedAt = ctx.CreatedAt
	return ctx
}

func membership(ctx, user types.Uid, role types.Role, status types.MemberStatus) *types.Membership {
	return &types.Membership{
		CreatedAt: types.TimeNow(),
		UpdatedAt: types.TimeNow(),
		Context:   ctx.String(),
		User:      user.String(),
		Role:      role,
		Status:    status,
	}
}
