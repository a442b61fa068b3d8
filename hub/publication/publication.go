// Package publication stores posts, comments and mirrors and enforces the
// pointer rules between them.
package publication

import (
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

// Get returns the publication at ptr or PublicationDoesNotExist.
func Get(tx *state.Tx, ptr types.PubPointer) (*state.Publication, error) {
	pub, err := tx.Publication(ptr)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, revert.ErrPublicationDoesNotExist.WithDetail("publication %s", ptr)
	}
	return pub, nil
}

// Root follows a mirror to the publication it mirrors. Mirrors always point
// at a root, so one hop is enough.
func Root(tx *state.Tx, pub *state.Publication) (*state.Publication, error) {
	if pub.PubKind() != types.PubKindMirror {
		return pub, nil
	}
	return Get(tx, pub.Pointed())
}

// Allocate reserves the next publication id of profile and persists the new
// count. Ids are never reused.
func Allocate(tx *state.Tx, profile *state.Profile) (types.PubID, error) {
	profile.PubCount++
	if err := tx.SetProfile(profile); err != nil {
		return 0, err
	}
	return types.PubID(profile.PubCount), nil
}

// ValidatePointer checks that pointed, referenced by the new publication
// (profileID, pubID) that was just allocated, exists and is not the new
// publication itself.
func ValidatePointer(tx *state.Tx, profileID types.ProfileID, pubID types.PubID, pointed types.PubPointer) error {
	p, err := tx.Profile(pointed.ProfileID)
	if err != nil {
		return err
	}
	if p == nil || pointed.PubID == 0 || uint64(pointed.PubID) > p.PubCount {
		return revert.ErrPublicationDoesNotExist.WithDetail("publication %s", pointed)
	}
	if pointed.ProfileID == profileID && pointed.PubID == pubID {
		return revert.ErrCannotCommentOnSelf
	}
	return nil
}

// CheckArrays fails with ArrayMismatch unless every length is equal.
func CheckArrays(lengths ...int) error {
	for _, n := range lengths[1:] {
		if n != lengths[0] {
			return revert.ErrArrayMismatch
		}
	}
	return nil
}
