package member

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const textCodeTypeMismatch = "ASSEMBLY_TYPE_NOT_FOUND"

// ErrTypeNotFound is returned by oracles that cannot resolve a type name.
var ErrTypeNotFound = errors.New("type not found")

// Oracle answers whether a type is publicly visible in the compiled assembly.
type Oracle interface {
	IsPublic(typeName string) (bool, error)
}

// StaticOracle is a precomputed visibility table. Names absent from the map
// are unknown.
type StaticOracle map[string]bool

func (s StaticOracle) IsPublic(typeName string) (bool, error) {
	public, ok := s[typeName]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTypeNotFound, typeName)
	}
	return public, nil
}

// Filter keeps entries whose owning type is public. A nil oracle keeps
// everything. Failing to resolve a type aborts the run: it means the
// documentation and the assembly do not belong together.
func Filter(entries []Entry, oracle Oracle) ([]Entry, error) {
	if oracle == nil {
		return entries, nil
	}
	visible := make(map[string]bool)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		public, seen := visible[e.TypeName]
		if !seen {
			var err error
			public, err = oracle.IsPublic(e.TypeName)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
					fmt.Sprintf("type %s is documented but cannot be resolved in the assembly; the documentation file does not match the assembly", e.TypeName)).
					WithTextCode(textCodeTypeMismatch)
			}
			visible[e.TypeName] = public
		}
		if public {
			out = append(out, e)
		}
	}
	return out, nil
}
