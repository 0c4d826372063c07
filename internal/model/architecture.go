package model

import (
	"fmt"
	"strconv"
	"strings"

	"mlp-playground/internal/apperr"
)

// ErrInvalidArchitecture is returned for unparsable or unusable layer lists.
var ErrInvalidArchitecture = fmt.Errorf("%w: architecture", apperr.ErrInput)

// Architecture lists layer widths from input to output.
type Architecture []int

// ParseArchitecture converts "2,4,1" into an Architecture. Tokens are trimmed
// and parsed as integers; it does not check widths or length, see Validate.
func ParseArchitecture(s string) (Architecture, error) {
	tokens := strings.Split(s, ",")
	arch := make(Architecture, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %q is not a number", ErrInvalidArchitecture, i+1, tok)
		}
		arch = append(arch, v)
	}
	return arch, nil
}

// Validate rejects architectures with fewer than two layers or a non-positive width.
func (a Architecture) Validate() error {
	if len(a) < 2 {
		return fmt.Errorf("%w: need at least 2 layers (got %d)", ErrInvalidArchitecture, len(a))
	}
	for i, w := range a {
		if w <= 0 {
			return fmt.Errorf("%w: layer %d width must be > 0 (got %d)", ErrInvalidArchitecture, i+1, w)
		}
	}
	return nil
}

// Inputs is the width of the first layer.
func (a Architecture) Inputs() int {
	if len(a) == 0 {
		return 0
	}
	return a[0]
}

// Outputs is the width of the last layer.
func (a Architecture) Outputs() int {
	if len(a) == 0 {
		return 0
	}
	return a[len(a)-1]
}

func (a Architecture) String() string {
	parts := make([]string, len(a))
	for i, w := range a {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ",")
}
