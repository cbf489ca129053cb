package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/tagsonomy/catalog"
	"github.com/c360studio/tagsonomy/graph"
	"github.com/c360studio/tagsonomy/vocabulary/rdfs"
	"github.com/c360studio/tagsonomy/vocabulary/uc"
)

const (
	engine    = "http://example.com/ontology/Engine"
	equipment = "http://example.com/ontology/Equipment"
	asset     = "http://example.com/ontology/Asset"
)

// newGraph returns a seeded graph with Engine -> Equipment declared.
func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	graph.SeedSecurableClasses(g)
	g.Add(equipment, rdfs.Label, "EQUIPMENT")
	g.Add(engine, rdfs.Label, "ENGINE")
	g.Add(engine, rdfs.SubClassOf, equipment)
	return g
}

// addSecurable asserts a securable instance with assignments.
func addSecurable(g *graph.Graph, typeIRI, name string, classes ...string) string {
	iri := uc.EntityIRI(name)
	g.Add(iri, rdfs.Type, typeIRI)
	g.Add(iri, uc.PredicateName, name)
	for _, class := range classes {
		g.Add(iri, uc.PredicateSemanticAssignment, class)
	}
	return iri
}

func TestDerive(t *testing.T) {
	t.Run("collects labels of the ancestor closure", func(t *testing.T) {
		g := newGraph(t)
		addSecurable(g, uc.ClassTable, "t1", engine)

		got := NewDeriver(nil).Derive(g)
		require.Len(t, got, 1)
		assert.Equal(t, catalog.Securable{Type: catalog.SecurableTable, Name: "t1"}, got[0].Securable)
		assert.Equal(t, []string{"ENGINE", "EQUIPMENT"}, got[0].Labels)
	})

	t.Run("groups per securable across assignments", func(t *testing.T) {
		g := newGraph(t)
		g.Add(asset, rdfs.Label, "ASSET")
		addSecurable(g, uc.ClassTable, "t1", engine, asset)

		got := NewDeriver(nil).Derive(g)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"ASSET", "ENGINE", "EQUIPMENT"}, got[0].Labels)
	})

	t.Run("unlabeled class contributes nothing but traversal continues", func(t *testing.T) {
		g := graph.New()
		graph.SeedSecurableClasses(g)
		// middle has no label; its superclass does.
		middle := "http://example.com/ontology/Middle"
		top := "http://example.com/ontology/Top"
		g.Add(middle, rdfs.SubClassOf, top)
		g.Add(top, rdfs.Label, "TOP")
		addSecurable(g, uc.ClassVolume, "v1", middle)

		got := NewDeriver(nil).Derive(g)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"TOP"}, got[0].Labels)
	})

	t.Run("duplicate labels collapse to one tag", func(t *testing.T) {
		g := newGraph(t)
		other := "http://example.com/ontology/OtherEquipment"
		g.Add(other, rdfs.Label, "EQUIPMENT")
		addSecurable(g, uc.ClassTable, "t1", engine, other)

		got := NewDeriver(nil).Derive(g)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"ENGINE", "EQUIPMENT"}, got[0].Labels)
	})

	t.Run("securable without assignments is absent", func(t *testing.T) {
		g := newGraph(t)
		addSecurable(g, uc.ClassTable, "t1")

		got := NewDeriver(nil).Derive(g)
		assert.Empty(t, got)
	})

	t.Run("assignment to unknown class yields empty contribution", func(t *testing.T) {
		g := newGraph(t)
		addSecurable(g, uc.ClassTable, "t1", "http://example.com/ontology/Ghost")

		got := NewDeriver(nil).Derive(g)
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Labels)
	})

	t.Run("subject missing uc:name is skipped", func(t *testing.T) {
		g := newGraph(t)
		iri := "http://example.com/ontology/nameless"
		g.Add(iri, rdfs.Type, uc.ClassTable)
		g.Add(iri, uc.PredicateSemanticAssignment, engine)

		got := NewDeriver(nil).Derive(g)
		assert.Empty(t, got)
	})

	t.Run("subject whose type is not a securable is skipped", func(t *testing.T) {
		g := newGraph(t)
		iri := "http://example.com/ontology/odd"
		g.Add(iri, rdfs.Type, equipment)
		g.Add(iri, uc.PredicateName, "odd")
		g.Add(iri, uc.PredicateSemanticAssignment, engine)

		got := NewDeriver(nil).Derive(g)
		assert.Empty(t, got)
	})

	t.Run("output is sorted by type then name", func(t *testing.T) {
		g := newGraph(t)
		addSecurable(g, uc.ClassTable, "zeta", engine)
		addSecurable(g, uc.ClassTable, "alpha", engine)
		addSecurable(g, uc.ClassColumn, "zeta.c", engine)

		got := NewDeriver(nil).Derive(g)
		require.Len(t, got, 3)
		assert.Equal(t, catalog.SecurableColumn, got[0].Securable.Type)
		assert.Equal(t, "alpha", got[1].Securable.Name)
		assert.Equal(t, "zeta", got[2].Securable.Name)
	})
}

func TestAncestors(t *testing.T) {
	t.Run("closure is reflexive", func(t *testing.T) {
		g := graph.New()
		assert.Equal(t, []string{"x"}, Ancestors(g, "x"))
	})

	t.Run("walks multiple levels", func(t *testing.T) {
		g := graph.New()
		g.Add("a", rdfs.SubClassOf, "b")
		g.Add("b", rdfs.SubClassOf, "c")

		assert.Equal(t, []string{"a", "b", "c"}, Ancestors(g, "a"))
	})

	t.Run("handles diamond hierarchies", func(t *testing.T) {
		g := graph.New()
		g.Add("a", rdfs.SubClassOf, "b")
		g.Add("a", rdfs.SubClassOf, "c")
		g.Add("b", rdfs.SubClassOf, "d")
		g.Add("c", rdfs.SubClassOf, "d")

		assert.Equal(t, []string{"a", "b", "c", "d"}, Ancestors(g, "a"))
	})

	t.Run("terminates on cycles", func(t *testing.T) {
		g := graph.New()
		g.Add("a", rdfs.SubClassOf, "b")
		g.Add("b", rdfs.SubClassOf, "a")

		assert.Equal(t, []string{"a", "b"}, Ancestors(g, "a"))
	})
}
