// Package catalog provides the remote metadata catalog tagging adapter.
//
// The reconciliation engine consumes the TagAPI interface; Client implements
// it against the Unity Catalog tag-assignments REST API. Securables are the
// catalog objects tags attach to, identified by type and dotted name.
package catalog

import (
	"fmt"
	"strings"
)

// SecurableType identifies the kind of catalog object a tag attaches to.
type SecurableType string

// The securable types supported by the tag-assignments API.
const (
	SecurableCatalog SecurableType = "CATALOG"
	SecurableSchema  SecurableType = "SCHEMA"
	SecurableTable   SecurableType = "TABLE"
	SecurableVolume  SecurableType = "VOLUME"
	SecurableColumn  SecurableType = "COLUMN"
)

// SecurableTypes returns all supported securable types.
func SecurableTypes() []SecurableType {
	return []SecurableType{
		SecurableCatalog,
		SecurableSchema,
		SecurableTable,
		SecurableVolume,
		SecurableColumn,
	}
}

// ParseSecurableType parses a securable type string (case-insensitive).
func ParseSecurableType(s string) (SecurableType, error) {
	t := SecurableType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case SecurableCatalog, SecurableSchema, SecurableTable, SecurableVolume, SecurableColumn:
		return t, nil
	default:
		return "", fmt.Errorf("unknown securable type: %q", s)
	}
}

// String returns the canonical upper-case type string.
func (t SecurableType) String() string { return string(t) }

// Securable identifies a catalog object by type and catalog-qualified name.
type Securable struct {
	Type SecurableType
	Name string
}

// String returns "TYPE name", the form used in logs and error messages.
func (s Securable) String() string {
	return string(s.Type) + " " + s.Name
}
