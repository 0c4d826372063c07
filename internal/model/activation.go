package model

import (
	"fmt"
	"math"
	"strings"

	"mlp-playground/internal/apperr"
)

// Activation selects the neuron nonlinearity.
type Activation int

const (
	Sigmoid Activation = iota
	ReLU
	Tanh
)

var activationNames = map[Activation]string{
	Sigmoid: "SIGMOID",
	ReLU:    "RELU",
	Tanh:    "TANH",
}

// Activations lists the supported kinds in declaration order.
func Activations() []Activation {
	return []Activation{Sigmoid, ReLU, Tanh}
}

// ParseActivation maps a name such as "SIGMOID" to its Activation.
func ParseActivation(name string) (Activation, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for a, n := range activationNames {
		if n == want {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown activation %q", apperr.ErrInput, name)
}

func (a Activation) String() string {
	if n, ok := activationNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Activation(%d)", int(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Activation) MarshalText() ([]byte, error) {
	if _, ok := activationNames[a]; !ok {
		return nil, fmt.Errorf("unknown activation %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Activation) UnmarshalText(text []byte) error {
	v, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a Activation) apply(x float64) float64 {
	switch a {
	case ReLU:
		return math.Max(0, x)
	case Tanh:
		return math.Tanh(x)
	default:
		return 1 / (1 + math.Exp(-x))
	}
}

// derivative takes the already activated value.
func (a Activation) derivative(y float64) float64 {
	switch a {
	case ReLU:
		if y > 0 {
			return 1
		}
		return 0
	case Tanh:
		return 1 - y*y
	default:
		return y * (1 - y)
	}
}
