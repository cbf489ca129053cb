package rdfs

// Namespace is the RDF Schema namespace.
const Namespace = "http://www.w3.org/2000/01/rdf-schema#"

// RDFNamespace is the RDF namespace.
const RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// Type is rdf:type, the instance-of predicate.
const Type = RDFNamespace + "type"

// Class IRIs.
const (
	// Class is rdfs:Class, the type of ontology classes.
	Class = Namespace + "Class"

	// Property is rdfs:Property, the type of ontology properties.
	Property = Namespace + "Property"
)

// Predicate IRIs.
const (
	// SubClassOf is the subclass hierarchy predicate.
	SubClassOf = Namespace + "subClassOf"

	// SubPropertyOf is the subproperty hierarchy predicate.
	SubPropertyOf = Namespace + "subPropertyOf"

	// Label is the human-readable label predicate. Tag derivation collects
	// these as the raw tag values.
	Label = Namespace + "label"

	// Comment is the human-readable description predicate.
	Comment = Namespace + "comment"

	// Domain links a property to the class of its subjects.
	Domain = Namespace + "domain"

	// Range links a property to the class of its objects.
	Range = Namespace + "range"
)
