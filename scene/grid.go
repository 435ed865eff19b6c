package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// HexGrid returns instance model matrices that lay rows x cols hexagons
// flat on the plane y = height, centred on the origin. spacing is the
// distance between neighbouring cells in a row; odd rows are shifted by half
// a cell.
func HexGrid(rows, cols int, spacing, height float32) []mgl32.Mat4 {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	// Rotate the XY-plane hexagon onto XZ, facing up.
	flat := mgl32.HomogRotate3DX(-math32.Pi / 2)
	rowStep := spacing * math32.Sqrt(3) / 2

	out := make([]mgl32.Mat4, 0, rows*cols)
	x0 := -float32(cols-1) * spacing / 2
	z0 := -float32(rows-1) * rowStep / 2
	for r := 0; r < rows; r++ {
		shift := float32(0)
		if r%2 == 1 {
			shift = spacing / 2
		}
		for c := 0; c < cols; c++ {
			x := x0 + float32(c)*spacing + shift
			z := z0 + float32(r)*rowStep
			out = append(out, mgl32.Translate3D(x, height, z).Mul4(flat))
		}
	}
	return out
}
