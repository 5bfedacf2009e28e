package endoperation

import (
	"fmt"
	"strings"
)

// Variant identifies a layout of the results screen.
type Variant int

const (
	Legacy Variant = iota
	EP10
	Interlocking
)

var variantNames = map[Variant]string{
	Legacy:       "legacy",
	EP10:         "ep10",
	Interlocking: "interlocking",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant resolves a variant name. "sof" is the same layout as "ep10".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy":
		return Legacy, nil
	case "ep10", "sof":
		return EP10, nil
	case "interlocking":
		return Interlocking, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}
