package graph

import "github.com/c360studio/tagsonomy/vocabulary/rdfs"

// Label returns the rdfs:label of an IRI and whether one is present. When a
// subject carries several labels the first asserted one wins.
func (g *Graph) Label(iri string) (string, bool) {
	labels := g.Objects(iri, rdfs.Label)
	if len(labels) == 0 {
		return "", false
	}
	return labels[0], true
}

// Comment returns the rdfs:comment of an IRI and whether one is present.
func (g *Graph) Comment(iri string) (string, bool) {
	comments := g.Objects(iri, rdfs.Comment)
	if len(comments) == 0 {
		return "", false
	}
	return comments[0], true
}

// Superclasses returns the direct superclasses of a class IRI.
func (g *Graph) Superclasses(iri string) []string {
	return g.Objects(iri, rdfs.SubClassOf)
}
