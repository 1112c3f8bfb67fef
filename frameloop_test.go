package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameLoopFiresInOrder(t *testing.T) {
	f := NewFrameLoop()
	var got []int
	f.RequestFrame(func() { got = append(got, 1) })
	f.RequestFrame(func() { got = append(got, 2) })

	assert.Equal(t, 2, f.Pending())
	assert.Equal(t, 2, f.Fire())
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 0, f.Fire())
}

func TestFrameLoopCancel(t *testing.T) {
	f := NewFrameLoop()
	fired := 0
	h := f.RequestFrame(func() { fired++ })
	f.CancelFrame(h)
	f.CancelFrame(h)
	f.CancelFrame(0)
	f.CancelFrame(999)

	assert.Equal(t, 0, f.Fire())
	assert.Equal(t, 0, fired)
}

func TestFrameLoopRequestDuringFireWaits(t *testing.T) {
	f := NewFrameLoop()
	fired := 0
	f.RequestFrame(func() {
		fired++
		f.RequestFrame(func() { fired++ })
	})

	assert.Equal(t, 1, f.Fire())
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, f.Pending())
	assert.Equal(t, 1, f.Fire())
	assert.Equal(t, 2, fired)
}

func TestFrameLoopHandlesAreUnique(t *testing.T) {
	f := NewFrameLoop()
	a := f.RequestFrame(func() {})
	b := f.RequestFrame(func() {})
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a)
}
