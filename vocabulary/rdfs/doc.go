// Package rdfs provides the RDF Schema vocabulary terms consumed by the
// ontology store: class and property declarations, the subclass and
// subproperty hierarchies, labels, comments, and domain/range links.
//
// rdf:type is included here as Type since it is the only term from the RDF
// namespace the store needs.
package rdfs
