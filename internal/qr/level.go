package qr

import (
	"fmt"
	"strings"

	"rsc.io/qr/coding"
)

// Level is a QR error-correction level.
type Level int

const (
	LevelL Level = iota // ~7% of codewords recoverable
	LevelM              // ~15%
	LevelQ              // ~25%
	LevelH              // ~30%
)

// DefaultLevel tolerates moderate print degradation (creases, toner
// dropout) while keeping the symbol capacity above 2 KB.
const DefaultLevel = LevelM

var levelNames = [...]string{LevelL: "L", LevelM: "M", LevelQ: "Q", LevelH: "H"}

// Levels lists the supported levels from least to most redundant.
func Levels() []Level {
	return []Level{LevelL, LevelM, LevelQ, LevelH}
}

// ParseLevel accepts L, M, Q or H in either case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown error correction level %q (want L, M, Q or H)", s)
}

// Valid reports whether l is one of the four levels.
func (l Level) Valid() bool {
	return l >= LevelL && l <= LevelH
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) coding() coding.Level {
	return coding.Level(l)
}
