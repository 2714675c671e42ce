package pixelart

import (
	"errors"
	"image/color"
	"testing"
)

func TestNewColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b int
		want    Color
		wantErr bool
	}{
		{name: "black", want: Color{0, 0, 0}},
		{name: "white", r: 255, g: 255, b: 255, want: Color{255, 255, 255}},
		{name: "mixed", r: 200, g: 10, b: 10, want: Color{200, 10, 10}},
		{name: "too large", r: 256, wantErr: true},
		{name: "negative", b: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewColor(tt.r, tt.g, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrBadColor) {
					t.Fatalf("NewColor() error = %v, want ErrBadColor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewColor() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NewColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorFromSlice(t *testing.T) {
	if _, err := ColorFromSlice([]int{1, 2}); !errors.Is(err, ErrBadColor) {
		t.Errorf("two channels: error = %v, want ErrBadColor", err)
	}
	if _, err := ColorFromSlice([]int{1, 2, 3, 4}); !errors.Is(err, ErrBadColor) {
		t.Errorf("four channels: error = %v, want ErrBadColor", err)
	}
	c, err := ColorFromSlice([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (Color{1, 2, 3}) {
		t.Errorf("ColorFromSlice() = %v, want #010203", c)
	}
}

func TestColorFromFloat(t *testing.T) {
	c, err := ColorFromFloat(1, 0, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (Color{255, 0, 128}) {
		t.Errorf("ColorFromFloat() = %v, want #ff0080", c)
	}

	_, err = ColorFromFloat(1.5, 0, 0)
	if !errors.Is(err, ErrConversionDomain) || !errors.Is(err, ErrBadColor) {
		t.Errorf("ColorFromFloat(1.5, 0, 0) error = %v, want ErrConversionDomain", err)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{in: "#00ff00", want: Color{0, 255, 0}},
		{in: "00FF00", want: Color{0, 255, 0}},
		{in: "#0f0", want: Color{0, 255, 0}},
		{in: "#1a2b3c", want: Color{0x1a, 0x2b, 0x3c}},
		{in: "#zzzzzz", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHex(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorRGBA(t *testing.T) {
	r, g, b, a := Color{255, 0, 0x80}.RGBA()
	if r != 0xffff || g != 0 || b != 0x8080 || a != 0xffff {
		t.Errorf("RGBA() = %x %x %x %x", r, g, b, a)
	}
}

func TestFromStd(t *testing.T) {
	got := FromStd(color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	if got != (Color{10, 20, 30}) {
		t.Errorf("FromStd() = %v, want #0a141e", got)
	}
	got = FromStd(color.Gray{Y: 7})
	if got != (Color{7, 7, 7}) {
		t.Errorf("FromStd(gray) = %v, want #070707", got)
	}
}

func TestColorHex(t *testing.T) {
	if got := (Color{0x1a, 0x2b, 0x3c}).Hex(); got != "#1a2b3c" {
		t.Errorf("Hex() = %s, want #1a2b3c", got)
	}
}
