// Package model defines the analysis result consumed by the notice engine:
// component identifiers, scan findings, and the repository exclude rules.
package model

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when an identifier string does not have
// the four colon-separated coordinates.
var ErrInvalidIdentifier = errors.New("invalid identifier")

const identifierParts = 4

// Identifier names a software component by its coordinates, e.g.
// "Maven:org.apache.commons:commons-lang3:3.12.0". Identifiers are comparable
// and are used as map keys throughout the engine.
type Identifier struct {
	Type      string // Package manager or "Unknown"
	Namespace string // Group, scope or vendor; may be empty
	Name      string
	Version   string
}

// ParseIdentifier parses the "Type:Namespace:Name:Version" form. Empty
// coordinates are allowed ("NPM::left-pad:1.3.0"), a missing separator is not.
// The version is the remainder after the third colon, so it may contain colons.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", identifierParts)
	if len(parts) != identifierParts {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}

	return Identifier{
		Type:      parts[0],
		Namespace: parts[1],
		Name:      parts[2],
		Version:   parts[3],
	}, nil
}

// MustParseIdentifier is like ParseIdentifier but panics on malformed input.
// Intended for tests and static tables.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the coordinates form accepted by ParseIdentifier.
func (id Identifier) String() string {
	return id.Type + ":" + id.Namespace + ":" + id.Name + ":" + id.Version
}

// Compare orders identifiers by type, namespace, name and version.
func (id Identifier) Compare(other Identifier) int {
	if c := cmp.Compare(id.Type, other.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Name, other.Name); c != 0 {
		return c
	}
	return cmp.Compare(id.Version, other.Version)
}

// MarshalText implements encoding.TextMarshaler so identifiers serialize as
// plain strings in YAML and JSON, including as map keys.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
