package pixelart

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrBadMetric is returned for unknown metric names and unusable metric settings.
var ErrBadMetric = errors.New("bad metric")

// DefaultHueWeight is the weight of the hue distance in the Hue metric when
// none is given.
const DefaultHueWeight = 1.0

// Metric decides which of two colors is closer to a reference color.
//
// Compare returns a negative number if a is closer to ref than b, a positive
// number if b is closer, and zero if they are equally close.
type Metric interface {
	Compare(a, b, ref Color) int
}

// Distancer is implemented by metrics that are true distances. The matcher
// uses it to compute one distance per palette entry instead of two.
type Distancer interface {
	Distance(a, b Color) float64
}

// RawDistance returns the squared Euclidean distance between two colors in RGB.
// The result is in the range [0, 3*255²].
func RawDistance(p1, p2 Color) int {
	dr := int(p1.R) - int(p2.R)
	dg := int(p1.G) - int(p2.G)
	db := int(p1.B) - int(p2.B)
	return dr*dr + dg*dg + db*db
}

// HueDistance measures how far the difference between two colors is from a
// shade of gray. Two colors that only differ in brightness have a hue distance
// of zero.
func HueDistance(p1, p2 Color) float64 {
	dr := float64(int(p1.R) - int(p2.R))
	dg := float64(int(p1.G) - int(p2.G))
	db := float64(int(p1.B) - int(p2.B))
	avg := (dr + dg + db) / 3
	dr -= avg
	dg -= avg
	db -= avg
	return dr*dr + dg*dg + db*db
}

// Raw compares colors by RawDistance.
type Raw struct{}

func (Raw) Compare(a, b, ref Color) int {
	return RawDistance(a, ref) - RawDistance(b, ref)
}

func (Raw) Distance(a, b Color) float64 {
	return float64(RawDistance(a, b))
}

func (Raw) String() string { return "raw" }

// Hue weighs the hue distance of two colors against their raw distance:
//
//	Weight·(HueDistance(a, ref) − HueDistance(b, ref)) + (RawDistance(a, ref) − RawDistance(b, ref))
//
// a is closer to ref than b iff the sum is negative. Hue is a comparator and not
// a distance, so matching with it keeps the closest color seen so far rather than
// searching for a global minimum.
//
// Weight must be finite and not negative. With a negative weight a palette color
// can compare closer to another color than to itself, and quantizing stops being
// idempotent.
type Hue struct {
	Weight float64
}

func (h Hue) Compare(a, b, ref Color) int {
	d := h.Weight*(HueDistance(a, ref)-HueDistance(b, ref)) +
		float64(RawDistance(a, ref)-RawDistance(b, ref))
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

func (h Hue) String() string { return fmt.Sprintf("hue(%g)", h.Weight) }

// ParseMetric returns the metric with the given name: "raw", "hue" or "lab".
// weight is only used by the hue metric.
func ParseMetric(name string, weight float64) (Metric, error) {
	switch strings.ToLower(name) {
	case "raw", "rgb":
		return Raw{}, nil
	case "hue":
		h := Hue{Weight: weight}
		if err := h.validate(); err != nil {
			return nil, err
		}
		return h, nil
	case "lab", "perceptual":
		return Lab{}, nil
	}
	return nil, fmt.Errorf("%w: unknown metric '%s', expected raw, hue or lab", ErrBadMetric, name)
}

func validateMetric(m Metric) error {
	if m == nil {
		return fmt.Errorf("%w: no metric set", ErrBadMetric)
	}
	switch h := m.(type) {
	case Hue:
		return h.validate()
	case *Hue:
		if h == nil {
			return fmt.Errorf("%w: no metric set", ErrBadMetric)
		}
		return h.validate()
	}
	return nil
}

func (h Hue) validate() error {
	if math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0) || h.Weight < 0 {
		return fmt.Errorf("%w: hue weight must be a finite number of at least 0, got %g", ErrBadMetric, h.Weight)
	}
	return nil
}
