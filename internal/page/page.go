// Package page describes the supported physical page sizes.
//
// All lengths are millimetres. Adding a size means adding a constant and a
// row in the table below; nothing else depends on the set of sizes.
package page

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPageSize indicates a page size that is not in the table.
var ErrUnknownPageSize = errors.New("unknown page size")

// Size identifies a supported page size. The zero value is A4.
type Size int

const (
	A4 Size = iota
	Letter
	Legal
	A5
)

// Default is the page size used when none is requested.
const Default = A4

// Dimensions of a page and its default margin.
type Dimensions struct {
	Width  float64
	Height float64
	Margin float64
}

// PrintableWidth is the width inside the margins.
func (d Dimensions) PrintableWidth() float64 {
	return d.Width - 2*d.Margin
}

// PrintableHeight is the height inside the margins.
func (d Dimensions) PrintableHeight() float64 {
	return d.Height - 2*d.Margin
}

var sizes = [...]struct {
	name string
	dims Dimensions
}{
	A4:     {"a4", Dimensions{Width: 210, Height: 297, Margin: 15}},
	Letter: {"letter", Dimensions{Width: 215.9, Height: 279.4, Margin: 15}},
	Legal:  {"legal", Dimensions{Width: 215.9, Height: 355.6, Margin: 15}},
	A5:     {"a5", Dimensions{Width: 148, Height: 210, Margin: 10}},
}

// Sizes lists every supported size.
func Sizes() []Size {
	out := make([]Size, len(sizes))
	for i := range sizes {
		out[i] = Size(i)
	}
	return out
}

// Parse looks a size up by name, ignoring case. An empty name is Default.
func Parse(name string) (Size, error) {
	if name == "" {
		return Default, nil
	}
	for i, s := range sizes {
		if strings.EqualFold(name, s.name) {
			return Size(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPageSize, name)
}

// Valid reports whether s is in the table.
func (s Size) Valid() bool {
	return s >= 0 && int(s) < len(sizes)
}

// Dimensions returns the size's dimensions, or an error for unknown sizes.
func (s Size) Dimensions() (Dimensions, error) {
	if !s.Valid() {
		return Dimensions{}, fmt.Errorf("%w: %d", ErrUnknownPageSize, int(s))
	}
	return sizes[s].dims, nil
}

func (s Size) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Size(%d)", int(s))
	}
	return sizes[s].name
}
