package scene

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is wrapped by every VertexLayout validation failure.
var ErrInvalidLayout = errors.New("invalid vertex layout")

// Instance matrices occupy four consecutive vec4 attribute slots.
const (
	InstanceSlotFirst = 3
	InstanceSlotLast  = 6
)

// Attribute is one float vector attribute of an interleaved vertex.
type Attribute struct {
	Name       string
	Slot       uint32
	Components int
}

// VertexLayout lists the attributes of an interleaved float32 vertex in
// memory order.
type VertexLayout []Attribute

var (
	LayoutPosition = VertexLayout{
		{Name: "position", Slot: 0, Components: 3},
	}
	LayoutPositionNormalUV = VertexLayout{
		{Name: "position", Slot: 0, Components: 3},
		{Name: "normal", Slot: 1, Components: 3},
		{Name: "uv", Slot: 2, Components: 2},
	}
	LayoutTangentSpace = VertexLayout{
		{Name: "position", Slot: 0, Components: 3},
		{Name: "normal", Slot: 1, Components: 3},
		{Name: "uv", Slot: 2, Components: 2},
		{Name: "tangent", Slot: 3, Components: 3},
		{Name: "bitangent", Slot: 4, Components: 3},
	}
)

// Floats returns the number of float32 values per vertex.
func (l VertexLayout) Floats() int {
	n := 0
	for _, a := range l {
		n += a.Components
	}
	return n
}

// Stride is the vertex size in bytes.
func (l VertexLayout) Stride() int { return l.Floats() * 4 }

// Offsets returns the byte offset of each attribute within a vertex.
func (l VertexLayout) Offsets() []int {
	offs := make([]int, len(l))
	off := 0
	for i, a := range l {
		offs[i] = off
		off += a.Components * 4
	}
	return offs
}

func (l VertexLayout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: no attributes", ErrInvalidLayout)
	}
	seen := make(map[uint32]string, len(l))
	for _, a := range l {
		if a.Components < 1 || a.Components > 4 {
			return fmt.Errorf("%w: attribute %q has %d components", ErrInvalidLayout, a.Name, a.Components)
		}
		if prev, ok := seen[a.Slot]; ok {
			return fmt.Errorf("%w: slot %d used by %q and %q", ErrInvalidLayout, a.Slot, prev, a.Name)
		}
		seen[a.Slot] = a.Name
	}
	return nil
}

// ValidateInstanced is Validate plus the requirement that the per-instance
// matrix slots stay free.
func (l VertexLayout) ValidateInstanced() error {
	if err := l.Validate(); err != nil {
		return err
	}
	for _, a := range l {
		if a.Slot >= InstanceSlotFirst && a.Slot <= InstanceSlotLast {
			return fmt.Errorf("%w: attribute %q in slot %d overlaps the instance matrix",
				ErrInvalidLayout, a.Name, a.Slot)
		}
	}
	return nil
}
