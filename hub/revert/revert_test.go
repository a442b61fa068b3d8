package revert

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestIdentityIgnoresDetail(t *testing.T) {
	err := ErrHandleTaken.WithDetail("handle %q", "alice")
	qt.Assert(t, err, qt.ErrorIs, ErrHandleTaken)
	qt.Assert(t, errors.Is(err, ErrHandleLengthInvalid), qt.IsFalse)
	qt.Assert(t, err.Error(), qt.Equals, `HandleTaken(): handle "alice"`)
	qt.Assert(t, Name(err), qt.Equals, "HandleTaken()")
	qt.Assert(t, ErrHandleTaken.Detail(), qt.Equals, "")
}

func TestLookalikesAreDistinct(t *testing.T) {
	qt.Assert(t, errors.Is(ErrNotProfileOwner, ErrNotProfileOwnerOrValid), qt.IsFalse)
	qt.Assert(t, errors.Is(ErrCallerNotFollowNFT, ErrCallerNotCollectNFT), qt.IsFalse)
	qt.Assert(t, errors.Is(ErrTokenDoesNotExist, ErrERC721OwnerQueryForNonexistent), qt.IsFalse)
}

func TestNameThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("collect: %w", ErrMintLimitExceeded)
	qt.Assert(t, Name(wrapped), qt.Equals, "MintLimitExceeded()")
	qt.Assert(t, Name(errors.New("disk on fire")), qt.Equals, "")
}

func TestCatalogue(t *testing.T) {
	all := All()
	qt.Assert(t, all, qt.HasLen, len(catalogue))
	names := map[string]bool{}
	for i, e := range all {
		if i > 0 {
			qt.Assert(t, all[i-1].Code() < e.Code(), qt.IsTrue)
		}
		qt.Assert(t, names[e.Name()], qt.IsFalse, qt.Commentf("duplicate name %s", e.Name()))
		names[e.Name()] = true
		found, ok := ByName(e.Name())
		qt.Assert(t, ok, qt.IsTrue)
		qt.Assert(t, found, qt.Equals, e)
	}
	// the verbatim catalogue keeps this one without parentheses
	e, ok := ByName("CannotCommentOnSelf")
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, e, qt.Equals, ErrCannotCommentOnSelf)

	e, ok = ByCode(66)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, e, qt.Equals, ErrMintLimitExceeded)
}
