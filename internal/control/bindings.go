package control

import (
	"fmt"
	"strings"
)

// Bindings maps key names, as reported by SDL, to actions.
type Bindings map[string]Action

// DefaultBindings returns the stock layout.
func DefaultBindings() Bindings {
	return Bindings{
		"I": TiltXPos,
		"K": TiltXNeg,
		"J": TiltZPos,
		"L": TiltZNeg,
		"W": PushForward,
		"A": PushLeft,
		"S": PushBack,
		"D": PushRight,
		"C": Jump,
		"P": ResetTilt,
		"R": Respawn,
	}
}

// Lookup returns the action bound to key. Key names are case-insensitive.
func (b Bindings) Lookup(key string) Action {
	if a, ok := b[key]; ok {
		return a
	}
	return b[strings.ToUpper(key)]
}

// Override rebinds actions from an action-name to key-name table. The key
// previously bound to an overridden action is released.
func (b Bindings) Override(table map[string]string) error {
	for name, key := range table {
		a, err := ParseAction(name)
		if err != nil {
			return fmt.Errorf("bindings: %w", err)
		}
		if key == "" {
			return fmt.Errorf("bindings: empty key for %s", name)
		}
		for k, bound := range b {
			if bound == a {
				delete(b, k)
			}
		}
		b[strings.ToUpper(key)] = a
	}
	return nil
}
