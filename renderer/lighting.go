package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"hexview/scene"
)

// MaxPointLights is the size of the pointLights array in the scene shaders.
const MaxPointLights = 8

// Lighting is the light state pushed to a program once per frame.
type Lighting struct {
	// Directional is optional; nil writes a black directional light.
	Directional  *scene.DirectionalLight
	Points       []scene.PointLight
	ViewPosition mgl32.Vec3
	// Shininess is the specular exponent; zero leaves material.shininess
	// unset.
	Shininess float32
}

// Apply writes the lighting uniforms (dirLight.*, pointLights[i].*,
// pointLightCount, viewPos, material.shininess) to p, which must be in use.
// Point lights beyond MaxPointLights are ignored. It returns how many
// uniforms p accepted.
func (l *Lighting) Apply(p *Program) int {
	n := 0
	count := func(ok bool) {
		if ok {
			n++
		}
	}

	var dir scene.DirectionalLight
	if l.Directional != nil {
		dir = *l.Directional
	}
	count(p.SetVec3("dirLight.direction", dir.Direction))
	count(p.SetVec3("dirLight.ambient", dir.Ambient))
	count(p.SetVec3("dirLight.diffuse", dir.Diffuse))
	count(p.SetVec3("dirLight.specular", dir.Specular))

	points := l.Points
	if len(points) > MaxPointLights {
		points = points[:MaxPointLights]
	}
	for i, pl := range points {
		prefix := fmt.Sprintf("pointLights[%d].", i)
		tint := pl.Tint()
		count(p.SetVec3(prefix+"position", pl.Position))
		count(p.SetVec3(prefix+"ambient", mulVec3(pl.Ambient, tint)))
		count(p.SetVec3(prefix+"diffuse", mulVec3(pl.Diffuse, tint)))
		count(p.SetVec3(prefix+"specular", mulVec3(pl.Specular, tint)))
		count(p.SetFloat(prefix+"constant", pl.Constant))
		count(p.SetFloat(prefix+"linear", pl.Linear))
		count(p.SetFloat(prefix+"quadratic", pl.Quadratic))
	}
	count(p.SetInt("pointLightCount", int32(len(points))))
	count(p.SetVec3("viewPos", l.ViewPosition))
	if l.Shininess > 0 {
		count(p.SetFloat("material.shininess", l.Shininess))
	}
	return n
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
