package uc

import "net/url"

// Namespace is the base IRI prefix for all Unity Catalog ontology terms.
const Namespace = "http://databricks.com/ontology/uc/"

// EntityNamespace is the base IRI for user-minted catalog object instances.
const EntityNamespace = "http://example.com/ontology/"

// Class IRIs define the securable types of the catalog.
const (
	// ClassSecurable is the root of the securable class hierarchy.
	ClassSecurable = Namespace + "Securable"

	// ClassCatalog represents a catalog securable.
	ClassCatalog = Namespace + "Catalog"

	// ClassSchema represents a schema securable.
	ClassSchema = Namespace + "Schema"

	// ClassTable represents a table securable.
	ClassTable = Namespace + "Table"

	// ClassVolume represents a volume securable.
	ClassVolume = Namespace + "Volume"

	// ClassColumn represents a column securable.
	ClassColumn = Namespace + "Column"
)

// Predicate IRIs used by tag derivation.
const (
	// PredicateName holds the catalog-qualified dotted name of a securable.
	PredicateName = Namespace + "name"

	// PredicateSemanticAssignment links a securable to an ontology class,
	// asserting "this object represents instances of this concept".
	PredicateSemanticAssignment = Namespace + "semanticAssignment"
)

// EntityIRI mints an instance IRI for a catalog object from its dotted name.
func EntityIRI(name string) string {
	return EntityNamespace + url.PathEscape(name)
}
