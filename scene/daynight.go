package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// sunKey is the directional light at one time of day.
type sunKey struct {
	t         float32
	color     mgl32.Vec3
	intensity float32
	ambient   mgl32.Vec3
}

// sunKeys are ordered by t and wrap from the last back to the first.
var sunKeys = []sunKey{
	{t: 0.00, color: mgl32.Vec3{1.00, 0.98, 0.92}, intensity: 0.80, ambient: mgl32.Vec3{0.08, 0.09, 0.12}}, // noon
	{t: 0.22, color: mgl32.Vec3{1.00, 0.65, 0.25}, intensity: 0.60, ambient: mgl32.Vec3{0.06, 0.06, 0.10}}, // golden hour
	{t: 0.30, color: mgl32.Vec3{0.70, 0.40, 0.55}, intensity: 0.20, ambient: mgl32.Vec3{0.04, 0.04, 0.08}}, // dusk
	{t: 0.50, color: mgl32.Vec3{0.40, 0.45, 0.65}, intensity: 0.10, ambient: mgl32.Vec3{0.02, 0.02, 0.05}}, // moonlight
	{t: 0.70, color: mgl32.Vec3{0.75, 0.42, 0.60}, intensity: 0.15, ambient: mgl32.Vec3{0.04, 0.04, 0.08}}, // pre-dawn
	{t: 0.78, color: mgl32.Vec3{1.00, 0.60, 0.28}, intensity: 0.50, ambient: mgl32.Vec3{0.05, 0.06, 0.09}}, // sunrise
}

// DayNight animates a directional light through a day. Time runs from 0
// to 1: 0 is noon, 0.25 sunset, 0.5 midnight and 0.75 sunrise.
type DayNight struct {
	Time float32
	// Length is the duration of a full day in seconds.
	Length float32
	Active bool
}

func NewDayNight(length float32) *DayNight {
	return &DayNight{Length: length, Active: length > 0}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active || dn.Length <= 0 {
		return
	}
	dn.Time += dt / dn.Length
	dn.Time -= math32.Floor(dn.Time)
}

func sampleSun(t float32) sunKey {
	n := len(sunKeys)
	for i := range sunKeys {
		a, b := sunKeys[i], sunKeys[(i+1)%n]
		end := b.t
		if i == n-1 {
			end = 1
		}
		if t < a.t || t >= end {
			continue
		}
		f := (t - a.t) / (end - a.t)
		return sunKey{
			t:         t,
			color:     lerp3(a.color, b.color, f),
			intensity: a.intensity + (b.intensity-a.intensity)*f,
			ambient:   lerp3(a.ambient, b.ambient, f),
		}
	}
	return sunKeys[0]
}

func lerp3(a, b mgl32.Vec3, f float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(f))
}

// Apply sets the light's direction and colors for the current time. The
// sun circles in the XY plane, overhead at noon and below at midnight.
func (dn *DayNight) Apply(l *DirectionalLight) {
	k := sampleSun(dn.Time)
	angle := dn.Time * 2 * math32.Pi
	l.Direction = mgl32.Vec3{math32.Sin(angle), -math32.Cos(angle), 0.35}.Normalize()
	l.Diffuse = k.color.Mul(k.intensity)
	l.Specular = k.color.Mul(k.intensity * 0.5)
	l.Ambient = k.ambient
}

// Clock formats the time of day as a 12-hour clock.
func (dn *DayNight) Clock() string {
	hours := dn.Time * 24
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)
	// Time 0 is noon.
	h = (h + 12) % 24
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%02d:%02d %s", display, m, period)
}
