// Package target holds the synthetic functions the network is asked to learn.
// Every function maps the unit square onto [0,1].
package target

import (
	"math"
	"strings"
)

// Kind names a target function.
type Kind string

const (
	FancySine  Kind = "FANCY_SINE"
	SimpleSine Kind = "SIMPLE_SINE"
	Spiral     Kind = "SPIRAL"
	XOR        Kind = "XOR"
)

// Kinds lists every known target function.
func Kinds() []Kind {
	return []Kind{FancySine, SimpleSine, Spiral, XOR}
}

// ParseKind normalises name. Unknown names resolve to XOR, matching Value.
func ParseKind(name string) Kind {
	k := Kind(strings.ToUpper(strings.TrimSpace(name)))
	switch k {
	case FancySine, SimpleSine, Spiral, XOR:
		return k
	default:
		return XOR
	}
}

// Value evaluates the target function k at (x, y).
func Value(x, y float64, k Kind) float64 {
	switch k {
	case FancySine:
		return (math.Sin(4*math.Pi*x)*math.Cos(4*math.Pi*y) + 1) / 2
	case SimpleSine:
		return (math.Sin(2*math.Pi*x) + 1) / 2
	case Spiral:
		theta := math.Atan2(y-0.5, x-0.5)
		return (math.Sin(5*theta) + 1) / 2
	default:
		if (x > 0.5) != (y > 0.5) {
			return 1
		}
		return 0
	}
}
