/******************************************************************************
 *
 *  Description :
 *
 *  Context lifecycle: creation with feature validation, updates, archival,
 *  and resolved membership permission sets.
 *
 *****************************************************************************/

package main

import (
	"errors"

	"github.com/isomorphiccat/kemotown/server/perm"
	"github.com/isomorphiccat/kemotown/server/plugin"
	"github.com/isomorphiccat/kemotown/server/store"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// createContext validates and persists a new context. The creator becomes
// its owner with an APPROVED OWNER membership.
func createContext(owner t.Uid, ctx *t.Context) (*t.Context, error) {
	if ctx.Kind == "" || ctx.Slug == "" || ctx.Name == "" {
		return nil, errBadRequest("Context kind, slug and name are required.")
	}

	// Every enabled feature must be a registered plugin compatible with the
	// context's kind.
	for _, feature := range ctx.Features {
		p := globals.registry.Get(feature)
		if p == nil {
			return nil, errBadRequest("Unknown feature: " + feature)
		}
		if !p.AppliesTo(ctx.Kind) {
			return nil, errBadRequest("Feature " + feature + " does not apply to kind " + ctx.Kind)
		}
	}

	ctx, err := store.Contexts.Create(ctx, owner)
	if err != nil {
		if errors.Is(err, t.ErrDuplicate) {
			return nil, errBadRequest("Slug is already taken.")
		}
		return nil, err
	}

	globals.registry.OnContextCreate(ctx)

	return ctx, nil
}

// updateContext applies a partial update. Requires context.edit.
func updateContext(actor t.Uid, ctx *t.Context, update map[string]any) error {
	ok, reason, err := hasPermissionWithReason(actor, ctx.Uid(), perm.ContextEdit)
	if err != nil {
		return err
	}
	if !ok {
		return errForbidden(reason)
	}

	if err = store.Contexts.Update(ctx.Uid(), update); err != nil {
		return err
	}

	globals.registry.OnContextUpdate(ctx)

	return nil
}

// archiveContext soft-hides the context. Requires context.archive.
func archiveContext(actor t.Uid, ctx *t.Context) error {
	ok, reason, err := hasPermissionWithReason(actor, ctx.Uid(), perm.ContextArchive)
	if err != nil {
		return err
	}
	if !ok {
		return errForbidden(reason)
	}

	return store.Contexts.Archive(ctx.Uid())
}

// validatePluginData runs a feature's data validation for the context,
// returning a structured result for form layers.
func validatePluginData(ctx *t.Context, pluginID string, data t.KVMap) plugin.ValidationResult {
	if !ctx.HasFeature(pluginID) {
		return plugin.ValidationResult{Errors: []string{"feature not enabled: " + pluginID}}
	}
	return globals.registry.ValidateData(pluginID, ctx, data)
}

// membershipPermissions resolves the full permission set of the user inside
// the context: role defaults plus enabled plugin permissions, adjusted by
// overrides.
func membershipPermissions(ctx *t.Context, user t.Uid) ([]string, error) {
	sub, err := store.Memberships.Get(ctx.Uid(), user)
	if err != nil {
		return nil, err
	}
	return perm.MembershipPermissions(sub, globals.registry.ForContext(ctx)), nil
}
