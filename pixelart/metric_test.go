package pixelart

import (
	"errors"
	"math"
	"testing"
)

func TestRawDistance(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Color
		want   int
	}{
		{name: "same", p1: Color{1, 2, 3}, p2: Color{1, 2, 3}, want: 0},
		{name: "black white", p1: Color{}, p2: Color{255, 255, 255}, want: 3 * 255 * 255},
		{name: "one channel", p1: Color{10, 0, 0}, p2: Color{0, 0, 0}, want: 100},
		{name: "mixed", p1: Color{1, 2, 3}, p2: Color{4, 6, 3}, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawDistance(tt.p1, tt.p2); got != tt.want {
				t.Errorf("RawDistance() = %d, want %d", got, tt.want)
			}
			if got := RawDistance(tt.p2, tt.p1); got != tt.want {
				t.Errorf("RawDistance() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHueDistance(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Color
		want   float64
	}{
		{name: "only brightness differs", p1: Color{10, 10, 10}, p2: Color{200, 200, 200}, want: 0},
		{name: "same", p1: Color{30, 60, 90}, p2: Color{30, 60, 90}, want: 0},
		// diff (255, 0, 0), mean 85: (170, -85, -85)
		{name: "red black", p1: Color{255, 0, 0}, p2: Color{}, want: 170*170 + 85*85 + 85*85},
		// diff (100, 0, 0), mean 100/3
		{name: "shifted hue", p1: Color{110, 10, 10}, p2: Color{10, 10, 10}, want: 60000.0 / 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HueDistance(tt.p1, tt.p2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HueDistance() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestHueCompare(t *testing.T) {
	ref := Color{128, 128, 128}
	gray := Color{100, 100, 100}
	tinted := Color{150, 128, 128}

	// Raw: tinted is closer (484 vs 2352)
	if got := (Raw{}).Compare(tinted, gray, ref); got >= 0 {
		t.Errorf("Raw.Compare() = %d, want negative", got)
	}
	// Heavy hue weight prefers the gray that only differs in brightness
	if got := (Hue{Weight: 10}).Compare(tinted, gray, ref); got <= 0 {
		t.Errorf("Hue{10}.Compare() = %d, want positive", got)
	}
	if got := (Hue{Weight: 10}).Compare(gray, gray, ref); got != 0 {
		t.Errorf("Hue{10}.Compare() of equal colors = %d, want 0", got)
	}
}

func TestHueZeroWeightIsRaw(t *testing.T) {
	colors := []Color{{0, 0, 0}, {255, 0, 0}, {200, 200, 200}, {12, 240, 90}, {128, 128, 128}}
	for _, ref := range colors {
		for _, a := range colors {
			for _, b := range colors {
				raw := sign((Raw{}).Compare(a, b, ref))
				hue := (Hue{}).Compare(a, b, ref)
				if raw != hue {
					t.Errorf("Compare(%v, %v, %v): raw %d, hue(0) %d", a, b, ref, raw, hue)
				}
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		want   Metric
	}{
		{name: "raw", want: Raw{}},
		{name: "RGB", want: Raw{}},
		{name: "hue", weight: 2.5, want: Hue{Weight: 2.5}},
		{name: "lab", want: Lab{}},
		{name: "perceptual", want: Lab{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetric(tt.name, tt.weight)
			if err != nil {
				t.Fatalf("ParseMetric() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMetric() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseMetric("cmyk", 0); !errors.Is(err, ErrBadMetric) {
		t.Errorf("unknown metric: error = %v, want ErrBadMetric", err)
	}
	for _, w := range []float64{math.NaN(), math.Inf(1), -0.5, -5} {
		if _, err := ParseMetric("hue", w); !errors.Is(err, ErrBadMetric) {
			t.Errorf("hue weight %g: error = %v, want ErrBadMetric", w, err)
		}
	}
	if _, err := ParseMetric("hue", 0); err != nil {
		t.Errorf("hue weight 0: unexpected error %v", err)
	}
}

func TestValidateMetric(t *testing.T) {
	tests := []struct {
		name    string
		m       Metric
		wantErr bool
	}{
		{name: "nil", m: nil, wantErr: true},
		{name: "raw", m: Raw{}},
		{name: "hue", m: Hue{Weight: 3}},
		{name: "hue pointer", m: &Hue{Weight: 3}},
		{name: "negative hue", m: Hue{Weight: -5}, wantErr: true},
		{name: "NaN hue pointer", m: &Hue{Weight: math.NaN()}, wantErr: true},
		{name: "negative hue pointer", m: &Hue{Weight: -1}, wantErr: true},
		{name: "nil hue pointer", m: (*Hue)(nil), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMetric(tt.m)
			if tt.wantErr && !errors.Is(err, ErrBadMetric) {
				t.Errorf("validateMetric() error = %v, want ErrBadMetric", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateMetric() unexpected error: %v", err)
			}
		})
	}
}

func TestToLab(t *testing.T) {
	// Reference values for sRGB, D65. L is scaled to [0, 1], a and b by the same factor.
	tests := []struct {
		name string
		c    Color
		want Vec3
	}{
		{name: "black", c: Color{}, want: Vec3{0, 0, 0}},
		{name: "white", c: Color{255, 255, 255}, want: Vec3{1, 0, 0}},
		{name: "red", c: Color{255, 0, 0}, want: Vec3{0.5324, 0.8009, 0.6720}},
		{name: "blue", c: Color{0, 0, 255}, want: Vec3{0.3230, 0.7919, -1.0786}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToLab(tt.c)
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 5e-3 {
					t.Errorf("ToLab() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestLabDistance(t *testing.T) {
	gray := Color{128, 128, 128}
	if d := LabDistance(gray, gray); d != 0 {
		t.Errorf("LabDistance() of equal colors = %g, want 0", d)
	}
	if LabDistance(gray, Color{200, 200, 200}) >= LabDistance(gray, Color{}) {
		t.Error("light gray should be perceptually closer to mid gray than black is")
	}
	if got := (Lab{}).Compare(Color{200, 200, 200}, Color{255, 0, 0}, gray); got >= 0 {
		t.Errorf("Lab.Compare() = %d, want negative", got)
	}
}
