// Package qr selects the smallest QR symbol that holds a byte payload and
// produces its module grid.
//
// Payloads are always encoded in byte mode. Capacities come from a static
// table indexed by version and error-correction level; a payload larger than
// the version 40 capacity fails with a *CapacityError rather than being
// truncated or silently moved to a weaker level.
package qr

import (
	"fmt"
	"image"
	"image/color"

	"rsc.io/qr/coding"
)

// Symbol is an encoded QR symbol: a square grid of dark and light modules,
// without quiet zone.
type Symbol struct {
	Version  int
	Level    Level
	Mask     int
	Size     int // modules per side
	Capacity int // payload bytes the version holds at Level

	modules []bool // row-major, true is dark
}

// Encode places payload in the smallest symbol that holds it at level.
// Of the eight data masks, the one with the lowest penalty score wins.
// The result depends only on payload and level.
func Encode(payload []byte, level Level) (*Symbol, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("invalid error correction level %d", int(level))
	}

	version, err := versionFor(len(payload), level)
	if err != nil {
		return nil, err
	}

	var best *Symbol
	bestScore := 0
	for mask := 0; mask < 8; mask++ {
		plan, err := coding.NewPlan(coding.Version(version), level.coding(), coding.Mask(mask))
		if err != nil {
			return nil, fmt.Errorf("failed to plan version %d-%s: %w", version, level, err)
		}
		code, err := plan.Encode(coding.String(string(payload)))
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}

		s := newSymbol(code, version, level, mask)
		if score := s.penalty(); best == nil || score < bestScore {
			best, bestScore = s, score
		}
	}
	return best, nil
}

func newSymbol(code *coding.Code, version int, level Level, mask int) *Symbol {
	s := &Symbol{
		Version:  version,
		Level:    level,
		Mask:     mask,
		Size:     code.Size,
		Capacity: Capacity(version, level),
		modules:  make([]bool, code.Size*code.Size),
	}
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; x++ {
			s.modules[y*code.Size+x] = code.Bitmap[y*code.Stride+x/8]&(1<<uint(7-x&7)) != 0
		}
	}
	return s
}

// Black reports whether the module at column x, row y is dark. Coordinates
// outside the symbol are light, which makes the quiet zone implicit.
func (s *Symbol) Black(x, y int) bool {
	if x < 0 || y < 0 || x >= s.Size || y >= s.Size {
		return false
	}
	return s.modules[y*s.Size+x]
}

// Equal reports whether both symbols have the same parameters and grid.
func (s *Symbol) Equal(o *Symbol) bool {
	if s.Version != o.Version || s.Level != o.Level || s.Mask != o.Mask || s.Size != o.Size {
		return false
	}
	for i := range s.modules {
		if s.modules[i] != o.modules[i] {
			return false
		}
	}
	return true
}

// Image rasterizes the symbol with scale pixels per module and a quiet zone
// of quiet modules on every side.
func (s *Symbol) Image(scale, quiet int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	if quiet < 0 {
		quiet = 0
	}
	side := (s.Size + 2*quiet) * scale
	img := image.NewGray(image.Rect(0, 0, side, side))
	for py := 0; py < side; py++ {
		for px := 0; px < side; px++ {
			c := color.Gray{Y: 0xff}
			if s.Black(px/scale-quiet, py/scale-quiet) {
				c = color.Gray{Y: 0}
			}
			img.SetGray(px, py, c)
		}
	}
	return img
}

func (s *Symbol) String() string {
	return fmt.Sprintf("version %d-%s (%dx%d modules, mask %d)", s.Version, s.Level, s.Size, s.Size, s.Mask)
}
