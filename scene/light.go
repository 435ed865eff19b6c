package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight is a light infinitely far away, shining along Direction.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
}

// DefaultDirectionalLight is a dim, slightly downward light.
func DefaultDirectionalLight() DirectionalLight {
	return DirectionalLight{
		Direction: mgl32.Vec3{-0.2, -1, -0.3},
		Ambient:   mgl32.Vec3{0.05, 0.05, 0.05},
		Diffuse:   mgl32.Vec3{0.4, 0.4, 0.4},
		Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
	}
}

// PointLight radiates from Position with intensity falling off as
// 1 / (Constant + Linear*d + Quadratic*d*d).
type PointLight struct {
	Position  mgl32.Vec3
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Constant  float32
	Linear    float32
	Quadratic float32
	// Color tints every term; zero means white.
	Color mgl32.Vec3
}

// DefaultPointLight covers roughly 50 units.
func DefaultPointLight(pos mgl32.Vec3) PointLight {
	return PointLight{
		Position:  pos,
		Ambient:   mgl32.Vec3{0.1, 0.1, 0.1},
		Diffuse:   mgl32.Vec3{0.6, 0.6, 0.6},
		Specular:  mgl32.Vec3{1, 1, 1},
		Constant:  1,
		Linear:    0.09,
		Quadratic: 0.032,
	}
}

// Tint is the effective color multiplier.
func (l PointLight) Tint() mgl32.Vec3 {
	if l.Color == (mgl32.Vec3{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return l.Color
}

// Attenuation evaluates the falloff at distance d.
func (l PointLight) Attenuation(d float32) float32 {
	den := l.Constant + l.Linear*d + l.Quadratic*d*d
	if den <= 0 {
		return 1
	}
	return 1 / den
}

// OrbitPosition places a point on a horizontal circle of the given radius
// around center, height above it, at angle t radians.
func OrbitPosition(center mgl32.Vec3, radius, height, t float32) mgl32.Vec3 {
	return center.Add(mgl32.Vec3{radius * math32.Cos(t), height, radius * math32.Sin(t)})
}
