package qr

import (
	"errors"
	"fmt"

	"rsc.io/qr/coding"
)

const (
	MinVersion = 1
	MaxVersion = 40

	// QuietZone is the blank border, in modules, a scanner needs around the symbol.
	QuietZone = 4
)

// ErrCapacityExceeded matches every *CapacityError.
var ErrCapacityExceeded = errors.New("payload exceeds QR capacity")

// CapacityError reports a payload that no supported version can hold.
type CapacityError struct {
	PayloadLen  int
	MaxCapacity int
	Level       Level
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds the maximum QR capacity of %d bytes at error correction level %s",
		e.PayloadLen, e.MaxCapacity, e.Level)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// capacities holds the byte-mode capacity of every version and level. It is
// filled once from the codeword tables and never modified afterwards.
var capacities = func() (t [MaxVersion + 1][4]int) {
	for v := MinVersion; v <= MaxVersion; v++ {
		for _, l := range Levels() {
			bits := coding.Version(v).DataBytes(l.coding())*8 - modeIndicatorBits - lengthBits(v)
			t[v][l] = bits / 8
		}
	}
	return t
}()

const modeIndicatorBits = 4

// lengthBits is the width of the byte-mode character count field.
func lengthBits(version int) int {
	if version <= 9 {
		return 8
	}
	return 16
}

// Capacity returns how many payload bytes a symbol of the given version and
// level holds, or 0 for an unsupported combination.
func Capacity(version int, level Level) int {
	if version < MinVersion || version > MaxVersion || !level.Valid() {
		return 0
	}
	return capacities[version][level]
}

// Modules returns the number of modules per side of a version, quiet zone
// excluded.
func Modules(version int) int {
	return 17 + 4*version
}

// MaxCapacity is the capacity of the largest symbol at level.
func MaxCapacity(level Level) int {
	return Capacity(MaxVersion, level)
}

// versionFor returns the smallest version whose capacity is at least n.
func versionFor(n int, level Level) (int, error) {
	for v := MinVersion; v <= MaxVersion; v++ {
		if capacities[v][level] >= n {
			return v, nil
		}
	}
	return 0, &CapacityError{PayloadLen: n, MaxCapacity: MaxCapacity(level), Level: level}
}
