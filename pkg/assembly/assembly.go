// Package assembly names the reference genome assemblies posbed can convert
// between and translates them to the naming used by the mapping service.
package assembly

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownAssembly = errors.New("unknown assembly")

// ID is a UCSC-style assembly name.
type ID string

const (
	HG19 ID = "hg19"
	HG38 ID = "hg38"
)

// All lists the supported assemblies in display order.
var All = []ID{HG19, HG38}

var grcNames = map[ID]string{
	HG19: "GRCh37",
	HG38: "GRCh38",
}

func Parse(s string) (ID, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, id := range All {
		if norm == string(id) || strings.EqualFold(norm, grcNames[id]) {
			return id, nil
		}
	}
	return "", fmt.Errorf("Parse %q: %w", s, ErrUnknownAssembly)
}

func (id ID) String() string {
	return string(id)
}

func (id ID) Valid() bool {
	_, ok := grcNames[id]
	return ok
}

// GRC returns the Genome Reference Consortium name of the assembly
// (hg19 -> GRCh37). Unknown assemblies are returned unchanged.
func (id ID) GRC() string {
	if name, ok := grcNames[id]; ok {
		return name
	}
	return string(id)
}

// UnmarshalText lets assembly names be read straight out of YAML and JSON.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id), nil
}
