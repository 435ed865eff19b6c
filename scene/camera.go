package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Movement is a keyboard direction for Camera.Move.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
)

const (
	defaultYaw         = -90
	defaultPitch       = 0
	defaultSpeed       = 2.5
	defaultSensitivity = 0.1
	defaultZoom        = 45
)

// Camera is a first-person camera driven by yaw and pitch in degrees.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	WorldUp  mgl32.Vec3

	Yaw   float32
	Pitch float32

	Speed       float32
	Sensitivity float32
	// Zoom is the vertical field of view in degrees.
	Zoom float32

	NearPlane float32
	FarPlane  float32
}

func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{
		Position:    position,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         defaultYaw,
		Pitch:       defaultPitch,
		Speed:       defaultSpeed,
		Sensitivity: defaultSensitivity,
		Zoom:        defaultZoom,
		NearPlane:   0.1,
		FarPlane:    100,
	}
	c.updateVectors()
	return c
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, c.NearPlane, c.FarPlane)
}

// Move translates the camera for dt seconds of held input.
func (c *Camera) Move(dir Movement, dt float32) {
	v := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(v))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(v))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(v))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(v))
	}
}

// Look applies a mouse delta. Pitch is kept inside (-89, 89) degrees.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -89, 89)
	c.updateVectors()
}

// Scroll narrows or widens the field of view.
func (c *Camera) Scroll(dy float32) {
	c.Zoom = mgl32.Clamp(c.Zoom-dy, 1, 45)
}

// SetFront points the camera along front, recovering yaw and pitch.
func (c *Camera) SetFront(front mgl32.Vec3) {
	if front.Len() < 1e-6 {
		return
	}
	f := front.Normalize()
	c.Pitch = mgl32.Clamp(mgl32.RadToDeg(math32.Asin(mgl32.Clamp(f[1], -1, 1))), -89, 89)
	c.Yaw = mgl32.RadToDeg(math32.Atan2(f[2], f[0]))
	c.updateVectors()
}

func (c *Camera) updateVectors() {
	yaw, pitch := mgl32.DegToRad(c.Yaw), mgl32.DegToRad(c.Pitch)
	c.Front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
