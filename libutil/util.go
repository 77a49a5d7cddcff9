package libutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	Rad2Deg = float32(180 / math.Pi)
	Deg2Rad = float32(math.Pi / 180)
)

type Deleter interface {
	Delete()
}

// Cleanup collects handles created during a multi-step construction and
// releases them in reverse order unless Keep is called.
type Cleanup struct {
	items []Deleter
	kept  bool
}

func (c *Cleanup) Add(items ...Deleter) {
	c.items = append(c.items, items...)
}

func (c *Cleanup) Keep() {
	c.kept = true
}

// Release is meant to be deferred right after the Cleanup is declared.
func (c *Cleanup) Release() {
	if c.kept {
		return
	}
	for i := len(c.items) - 1; i >= 0; i-- {
		c.items[i].Delete()
	}
	c.items = nil
}

// https://math.stackexchange.com/a/1681815/1014081
func Perpendicular(v mgl32.Vec3) mgl32.Vec3 {
	lx := v[0] * v[0]
	ly := v[1] * v[1]
	lz := v[2] * v[2]

	smallest := lx
	index := 0
	if smallest > ly {
		smallest = ly
		index = 1
	}
	if smallest > lz {
		index = 2
	}
	e := mgl32.Vec3{}
	e[index] = 1
	return v.Cross(e)
}
