package clock

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestMock(t *testing.T) {
	c := qt.New(t)
	m := NewMock(100, 1)
	m.Advance(10, 2)
	c.Assert(m.Timestamp(), qt.Equals, uint64(110))
	c.Assert(m.Height(), qt.Equals, uint64(3))
	m.Set(5, 5)
	c.Assert(m.Timestamp(), qt.Equals, uint64(5))
}

func TestSystemHeight(t *testing.T) {
	c := qt.New(t)
	s := &System{Genesis: time.Now().Add(-10 * time.Second), BlockPeriod: time.Second}
	c.Assert(s.Height() >= 11, qt.IsTrue)
	c.Assert((&System{}).Height(), qt.Equals, uint64(1))
}
