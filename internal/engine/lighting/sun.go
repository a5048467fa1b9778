// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	gomath "math"

	"github.com/MrShreyas/car/pkg/math"
)

// SunDirection converts compass angles in degrees to a unit vector pointing
// towards the sun. Azimuth turns around +Y starting from +Z towards +X,
// elevation is measured up from the horizon.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	az := float64(azimuth) * gomath.Pi / 180.0
	el := float64(elevation) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Sin(el)),
		Z: float32(gomath.Cos(el) * gomath.Cos(az)),
	}
}

// SunAngles is the inverse of SunDirection for a non-zero direction.
func SunAngles(dir math.Vec3) (azimuth, elevation float32) {
	d := dir.Normalize()
	azimuth = float32(gomath.Atan2(float64(d.X), float64(d.Z)) * 180 / gomath.Pi)
	if azimuth < 0 {
		azimuth += 360
	}
	elevation = float32(gomath.Asin(float64(max(-1, min(1, d.Y)))) * 180 / gomath.Pi)
	return azimuth, elevation
}
