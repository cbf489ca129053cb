// Package derive implements tag derivation: walking the class hierarchy to
// compute, for every securable with at least one semantic assignment, the
// set of tag labels implied by the reflexive-transitive superclass closure
// of its assigned classes.
package derive

import (
	"log/slog"
	"sort"

	"github.com/c360studio/tagsonomy/catalog"
	"github.com/c360studio/tagsonomy/graph"
	"github.com/c360studio/tagsonomy/vocabulary/rdfs"
	"github.com/c360studio/tagsonomy/vocabulary/uc"
)

// SecurableTags is one derived entry: a securable and the deduplicated,
// sorted set of tag labels its assignments imply.
type SecurableTags struct {
	Securable catalog.Securable
	Labels    []string
}

// Deriver computes derived tag sets from an ontology graph.
type Deriver struct {
	logger *slog.Logger
}

// NewDeriver creates a deriver. A nil logger falls back to slog.Default.
func NewDeriver(logger *slog.Logger) *Deriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deriver{logger: logger}
}

// Derive returns one entry per distinct securable that has at least one
// semantic assignment, sorted by type then name. A securable with several
// assignments yields a single entry whose label set is the union of each
// assignment's ancestor closure. Classes without labels contribute no tag
// but do not stop traversal past them.
func (d *Deriver) Derive(g *graph.Graph) []SecurableTags {
	bySecurable := make(map[catalog.Securable]map[string]struct{})

	for _, subject := range g.SubjectsWithPredicate(uc.PredicateSemanticAssignment) {
		sec, ok := d.securableIdentity(g, subject)
		if !ok {
			continue
		}

		labels, ok := bySecurable[sec]
		if !ok {
			labels = make(map[string]struct{})
			bySecurable[sec] = labels
		}

		for _, class := range g.Objects(subject, uc.PredicateSemanticAssignment) {
			for _, ancestor := range Ancestors(g, class) {
				if label, ok := g.Label(ancestor); ok {
					labels[label] = struct{}{}
				}
			}
		}
	}

	out := make([]SecurableTags, 0, len(bySecurable))
	for sec, labels := range bySecurable {
		sorted := make([]string, 0, len(labels))
		for label := range labels {
			sorted = append(sorted, label)
		}
		sort.Strings(sorted)
		out = append(out, SecurableTags{Securable: sec, Labels: sorted})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Securable.Type != out[j].Securable.Type {
			return out[i].Securable.Type < out[j].Securable.Type
		}
		return out[i].Securable.Name < out[j].Securable.Name
	})
	return out
}

// securableIdentity resolves a subject's (type, name) pair: the name from
// uc:name, and the type from the label of an rdf:type class whose superclass
// closure reaches uc:Securable. Subjects missing either are skipped.
func (d *Deriver) securableIdentity(g *graph.Graph, subject string) (catalog.Securable, bool) {
	names := g.Objects(subject, uc.PredicateName)
	if len(names) == 0 {
		d.logger.Debug("Skipping assignment subject without uc:name", "subject", subject)
		return catalog.Securable{}, false
	}

	for _, typeIRI := range g.Objects(subject, rdfs.Type) {
		if !reachesSecurable(g, typeIRI) {
			continue
		}
		label, ok := g.Label(typeIRI)
		if !ok {
			continue
		}
		secType, err := catalog.ParseSecurableType(label)
		if err != nil {
			continue
		}
		return catalog.Securable{Type: secType, Name: names[0]}, true
	}

	d.logger.Debug("Skipping assignment subject without securable type", "subject", subject)
	return catalog.Securable{}, false
}

// reachesSecurable reports whether a class's superclass closure contains
// uc:Securable.
func reachesSecurable(g *graph.Graph, class string) bool {
	for _, ancestor := range Ancestors(g, class) {
		if ancestor == uc.ClassSecurable {
			return true
		}
	}
	return false
}

// Ancestors returns the reflexive-transitive superclass closure of a class,
// sorted. The ontology store does not enforce acyclicity, so traversal
// carries a visited set.
func Ancestors(g *graph.Graph, class string) []string {
	visited := map[string]struct{}{class: {}}
	stack := []string{class}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, super := range g.Superclasses(current) {
			if _, seen := visited[super]; seen {
				continue
			}
			visited[super] = struct{}{}
			stack = append(stack, super)
		}
	}

	out := make([]string, 0, len(visited))
	for iri := range visited {
		out = append(out, iri)
	}
	sort.Strings(out)
	return out
}
