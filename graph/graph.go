// Package graph implements the in-memory ontology store.
//
// The store holds (subject, predicate, object) triples and answers the two
// query shapes tag derivation needs: forward lookup (objects of a subject
// under a predicate) and reverse lookup (subjects carrying a predicate).
// Label presence is surfaced explicitly as a (string, bool) pair; a class
// without a label is a first-class state, not a missing attribute.
//
// A Graph is built fresh per run from ontology documents (see Load) and is
// never shared across runs.
package graph

import (
	"sort"
)

// Triple is a single (subject, predicate, object) statement. Objects are
// plain strings: either IRIs or literal values, distinguished by context.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// Graph is an indexed, deduplicated triple set. The zero value is not
// usable; construct with New.
type Graph struct {
	triples []Triple
	seen    map[Triple]struct{}

	// spo: subject -> predicate -> objects, insertion ordered.
	spo map[string]map[string][]string
	// pos: predicate -> object -> subjects, insertion ordered.
	pos map[string]map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		seen: make(map[Triple]struct{}),
		spo:  make(map[string]map[string][]string),
		pos:  make(map[string]map[string][]string),
	}
}

// Add inserts a triple. Duplicates are ignored.
func (g *Graph) Add(subject, predicate, object string) {
	t := Triple{Subject: subject, Predicate: predicate, Object: object}
	if _, dup := g.seen[t]; dup {
		return
	}
	g.seen[t] = struct{}{}
	g.triples = append(g.triples, t)

	preds, ok := g.spo[subject]
	if !ok {
		preds = make(map[string][]string)
		g.spo[subject] = preds
	}
	preds[predicate] = append(preds[predicate], object)

	objs, ok := g.pos[predicate]
	if !ok {
		objs = make(map[string][]string)
		g.pos[predicate] = objs
	}
	objs[object] = append(objs[object], subject)
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.triples) }

// Objects returns the objects of (subject, predicate, ?) in insertion order.
func (g *Graph) Objects(subject, predicate string) []string {
	return g.spo[subject][predicate]
}

// Subjects returns the subjects of (?, predicate, object) in insertion order.
func (g *Graph) Subjects(predicate, object string) []string {
	return g.pos[predicate][object]
}

// SubjectsWithPredicate returns the distinct subjects that carry the
// predicate at least once, sorted for deterministic iteration.
func (g *Graph) SubjectsWithPredicate(predicate string) []string {
	objs := g.pos[predicate]
	if len(objs) == 0 {
		return nil
	}
	set := make(map[string]struct{})
	for _, subjects := range objs {
		for _, s := range subjects {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Triples returns a copy of all triples in insertion order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Subjects in the graph, sorted. Useful for serialization.
func (g *Graph) AllSubjects() []string {
	out := make([]string, 0, len(g.spo))
	for s := range g.spo {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// PredicatesOf returns the predicates present on a subject, sorted.
func (g *Graph) PredicatesOf(subject string) []string {
	preds := g.spo[subject]
	out := make([]string, 0, len(preds))
	for p := range preds {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
