package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// SortBackToFront orders items by decreasing distance from eye, the draw
// order blended geometry needs. pos returns an item's world position.
func SortBackToFront[T any](items []T, eye mgl32.Vec3, pos func(T) mgl32.Vec3) {
	slices.SortStableFunc(items, func(a, b T) int {
		da := pos(a).Sub(eye).Len()
		db := pos(b).Sub(eye).Len()
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		return 0
	})
}
