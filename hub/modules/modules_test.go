package modules

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/hub/hub/revert"
	"go.vocdoni.io/hub/types"
)

type stub types.ModuleKind

func (s stub) Kind() types.ModuleKind                               { return types.ModuleKind(s) }
func (stub) ProcessConfiguration(*Context, []byte) ([]byte, error) { return nil, nil }
func (stub) ProcessAction(*Context) error                          { return nil }

func TestRegistry(t *testing.T) {
	c := qt.New(t)
	r := NewRegistry()

	a := common.HexToAddress("0x0b")
	b := common.HexToAddress("0x0a")
	ref := common.HexToAddress("0x0c")

	c.Assert(r.Register(types.ZeroAddress, stub(types.FollowModule)), qt.ErrorMatches, ".*zero address")
	c.Assert(r.Register(a, stub(types.FollowModule)), qt.IsNil)
	c.Assert(r.Register(b, stub(types.FollowModule)), qt.IsNil)
	c.Assert(r.Register(ref, stub(types.ReferenceModule)), qt.IsNil)
	c.Assert(r.Register(a, stub(types.CollectModule)), qt.ErrorMatches, "module already registered at .*")

	m, ok := r.Get(a)
	c.Assert(ok, qt.IsTrue)
	c.Assert(m.Kind(), qt.Equals, types.FollowModule)
	_, ok = r.Get(common.HexToAddress("0xff"))
	c.Assert(ok, qt.IsFalse)

	c.Assert(r.Addresses(types.FollowModule), qt.DeepEquals, []common.Address{b, a})
	c.Assert(r.Addresses(types.ReferenceModule), qt.DeepEquals, []common.Address{ref})
	c.Assert(r.Addresses(types.CollectModule), qt.HasLen, 0)
}

func TestParams(t *testing.T) {
	type params struct {
		Limit uint64
		Addrs [][]byte
	}
	c := qt.New(t)

	addr := common.HexToAddress("0x01")
	data := Encode(&params{Limit: 3, Addrs: [][]byte{addr.Bytes()}})

	var got params
	c.Assert(Decode(data, &got), qt.IsNil)
	c.Assert(got.Limit, qt.Equals, uint64(3))
	c.Assert(Addrs(got.Addrs), qt.DeepEquals, []common.Address{addr})

	c.Assert(Decode(nil, &got), qt.ErrorIs, revert.ErrInitParamsInvalid)
	c.Assert(Decode([]byte{0xff}, &got), qt.ErrorIs, revert.ErrInitParamsInvalid)
}
