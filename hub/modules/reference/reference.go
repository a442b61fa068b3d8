// Package reference holds the built-in reference modules.
package reference

import (
	"go.vocdoni.io/hub/hub/modules"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

// FollowerOnly only lets followers of the author comment on or mirror a
// publication.
type FollowerOnly struct{}

var _ modules.Module = FollowerOnly{}

// Kind implements modules.Module.
func (FollowerOnly) Kind() types.ModuleKind { return types.ReferenceModule }

// ProcessConfiguration implements modules.Module.
func (FollowerOnly) ProcessConfiguration(*modules.Context, []byte) ([]byte, error) {
	return nil, nil
}

// ProcessAction implements modules.Module.
func (FollowerOnly) ProcessAction(ctx *modules.Context) error {
	following, err := ctx.Graph.IsFollowing(ctx.ProfileID, ctx.Actor)
	if err != nil {
		return err
	}
	if !following {
		return revert.ErrFollowInvalid.WithDetail("%s does not follow profile %d", ctx.Actor.Hex(), ctx.ProfileID)
	}
	return nil
}
