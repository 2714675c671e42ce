package pixelart

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Vec3 is a color in a space with three float coordinates, like CIE Lab.
type Vec3 [3]float64

func sqDist(a, b Vec3) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// Projector is implemented by metrics that are a plain squared Euclidean
// distance in another color space. The Quantizer converts the whole image and
// the palette into that space once, instead of on every comparison.
type Projector interface {
	Project(c Color) Vec3
}

// ToLab converts an sRGB color to CIE L*a*b*, D65 white point. The channels are
// normalized to [0, 1] and linearized first. L is in [0, 1] rather than [0, 100],
// with a and b scaled by the same factor.
func ToLab(c Color) Vec3 {
	l, a, b := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Lab()
	return Vec3{l, a, b}
}

// LabDistance returns the squared Euclidean distance between two colors in Lab space.
func LabDistance(p1, p2 Color) float64 {
	return sqDist(ToLab(p1), ToLab(p2))
}

// Lab compares colors by LabDistance. It's the perceptual metric: distances
// follow human perceived difference much better than RGB distances do.
type Lab struct{}

func (Lab) Compare(a, b, ref Color) int {
	r := ToLab(ref)
	da := sqDist(ToLab(a), r)
	db := sqDist(ToLab(b), r)
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	}
	return 0
}

func (Lab) Distance(a, b Color) float64 {
	return LabDistance(a, b)
}

func (Lab) Project(c Color) Vec3 {
	return ToLab(c)
}

func (Lab) String() string { return "lab" }
