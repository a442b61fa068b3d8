package publication

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/db/metadb"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/hub/state"
	"go.vocdoni.io/hub/types"
)

func TestPointers(t *testing.T) {
	c := qt.New(t)
	st := state.New(metadb.NewTest(t))
	err := st.Update(func(tx *state.Tx) error {
		p := &state.Profile{ID: 1}
		id, err := Allocate(tx, p)
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, types.PubID(1))
		c.Assert(tx.SetPublication(&state.Publication{ProfileID: 1, PubID: 1, Kind: uint8(types.PubKindPost)}), qt.IsNil)

		id, err = Allocate(tx, p)
		c.Assert(err, qt.IsNil)
		c.Assert(id, qt.Equals, types.PubID(2))

		c.Assert(ValidatePointer(tx, 1, 2, types.PubPointer{ProfileID: 1, PubID: 1}), qt.IsNil)
		c.Assert(ValidatePointer(tx, 1, 2, types.PubPointer{ProfileID: 1, PubID: 2}), qt.ErrorIs, revert.ErrCannotCommentOnSelf)
		c.Assert(ValidatePointer(tx, 1, 2, types.PubPointer{ProfileID: 1, PubID: 3}), qt.ErrorIs, revert.ErrPublicationDoesNotExist)
		c.Assert(ValidatePointer(tx, 1, 2, types.PubPointer{ProfileID: 1, PubID: 0}), qt.ErrorIs, revert.ErrPublicationDoesNotExist)
		c.Assert(ValidatePointer(tx, 1, 2, types.PubPointer{ProfileID: 9, PubID: 1}), qt.ErrorIs, revert.ErrPublicationDoesNotExist)

		mirror := &state.Publication{ProfileID: 1, PubID: 2, Kind: uint8(types.PubKindMirror), PointedProfileID: 1, PointedPubID: 1}
		c.Assert(tx.SetPublication(mirror), qt.IsNil)
		root, err := Root(tx, mirror)
		c.Assert(err, qt.IsNil)
		c.Assert(root.Pointer(), qt.Equals, types.PubPointer{ProfileID: 1, PubID: 1})

		_, err = Get(tx, types.PubPointer{ProfileID: 1, PubID: 3})
		c.Assert(err, qt.ErrorIs, revert.ErrPublicationDoesNotExist)
		return nil
	})
	c.Assert(err, qt.IsNil)
}

func TestCheckArrays(t *testing.T) {
	c := qt.New(t)
	c.Assert(CheckArrays(2, 2), qt.IsNil)
	c.Assert(CheckArrays(0, 0, 0), qt.IsNil)
	c.Assert(CheckArrays(1, 2), qt.ErrorIs, revert.ErrArrayMismatch)
}
