package graph

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/tagsonomy/catalog"
	"github.com/c360studio/tagsonomy/vocabulary/rdfs"
	"github.com/c360studio/tagsonomy/vocabulary/uc"
)

// Document is the YAML ontology document format. A document declares
// ontology classes and properties plus the securables assigned to them.
type Document struct {
	Classes    []ClassDoc     `yaml:"classes"`
	Properties []PropertyDoc  `yaml:"properties"`
	Securables []SecurableDoc `yaml:"securables"`
}

// ClassDoc declares an ontology class.
type ClassDoc struct {
	IRI        string   `yaml:"iri"`
	Label      string   `yaml:"label"`
	Comment    string   `yaml:"comment"`
	SubClassOf []string `yaml:"subclass_of"`
}

// PropertyDoc declares an ontology property.
type PropertyDoc struct {
	IRI           string   `yaml:"iri"`
	Label         string   `yaml:"label"`
	Comment       string   `yaml:"comment"`
	SubPropertyOf []string `yaml:"subproperty_of"`
	Domain        string   `yaml:"domain"`
	Range         string   `yaml:"range"`
}

// SecurableDoc declares a catalog object and its semantic assignments.
// IRI is optional; when omitted one is minted from the name.
type SecurableDoc struct {
	Type        string   `yaml:"type"`
	Name        string   `yaml:"name"`
	IRI         string   `yaml:"iri"`
	Assignments []string `yaml:"assignments"`
}

// securableClassIRIs maps securable type strings to their class IRIs.
var securableClassIRIs = map[catalog.SecurableType]string{
	catalog.SecurableCatalog: uc.ClassCatalog,
	catalog.SecurableSchema:  uc.ClassSchema,
	catalog.SecurableTable:   uc.ClassTable,
	catalog.SecurableVolume:  uc.ClassVolume,
	catalog.SecurableColumn:  uc.ClassColumn,
}

// SeedSecurableClasses asserts the fixed securable class hierarchy: every
// securable class is a subclass of uc:Securable labelled with its catalog
// type string. Every graph starts from this preamble.
func SeedSecurableClasses(g *Graph) {
	g.Add(uc.ClassSecurable, rdfs.Type, rdfs.Class)

	types := make([]catalog.SecurableType, 0, len(securableClassIRIs))
	for t := range securableClassIRIs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		iri := securableClassIRIs[t]
		g.Add(iri, rdfs.SubClassOf, uc.ClassSecurable)
		g.Add(iri, rdfs.Label, string(t))
	}

	g.Add(uc.PredicateName, rdfs.Type, rdfs.Property)
	g.Add(uc.PredicateSemanticAssignment, rdfs.Type, rdfs.Property)
}

// Load builds a graph from ontology documents. Each pattern is a file path
// or doublestar glob; every matched file must parse. The returned graph is
// pre-seeded with the securable class hierarchy.
func Load(patterns ...string) (*Graph, error) {
	files, err := expandPatterns(patterns)
	if err != nil {
		return nil, err
	}

	g := New()
	SeedSecurableClasses(g)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read ontology document: %w", err)
		}

		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse ontology document %s: %w", file, err)
		}

		if err := Apply(g, &doc); err != nil {
			return nil, fmt.Errorf("apply ontology document %s: %w", file, err)
		}
	}

	return g, nil
}

// expandPatterns resolves doublestar globs to a sorted, deduplicated file
// list. A pattern that matches nothing is an error: a sync driven by a
// missing ontology would silently clear every owned tag.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad graph pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("graph pattern %q matched no files", pattern)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Apply asserts a document's declarations into the graph.
func Apply(g *Graph, doc *Document) error {
	for i, c := range doc.Classes {
		if c.IRI == "" {
			return fmt.Errorf("class %d: iri is required", i)
		}
		g.Add(c.IRI, rdfs.Type, rdfs.Class)
		if c.Label != "" {
			g.Add(c.IRI, rdfs.Label, c.Label)
		}
		if c.Comment != "" {
			g.Add(c.IRI, rdfs.Comment, c.Comment)
		}
		for _, super := range c.SubClassOf {
			g.Add(c.IRI, rdfs.SubClassOf, super)
		}
	}

	for i, p := range doc.Properties {
		if p.IRI == "" {
			return fmt.Errorf("property %d: iri is required", i)
		}
		g.Add(p.IRI, rdfs.Type, rdfs.Property)
		if p.Label != "" {
			g.Add(p.IRI, rdfs.Label, p.Label)
		}
		if p.Comment != "" {
			g.Add(p.IRI, rdfs.Comment, p.Comment)
		}
		for _, super := range p.SubPropertyOf {
			g.Add(p.IRI, rdfs.SubPropertyOf, super)
		}
		if p.Domain != "" {
			g.Add(p.IRI, rdfs.Domain, p.Domain)
		}
		if p.Range != "" {
			g.Add(p.IRI, rdfs.Range, p.Range)
		}
	}

	for i, s := range doc.Securables {
		secType, err := catalog.ParseSecurableType(s.Type)
		if err != nil {
			return fmt.Errorf("securable %d: %w", i, err)
		}
		if s.Name == "" {
			return fmt.Errorf("securable %d: name is required", i)
		}

		iri := s.IRI
		if iri == "" {
			iri = uc.EntityIRI(s.Name)
		}

		g.Add(iri, rdfs.Type, securableClassIRIs[secType])
		g.Add(iri, uc.PredicateName, s.Name)
		for _, class := range s.Assignments {
			g.Add(iri, uc.PredicateSemanticAssignment, class)
		}
	}

	return nil
}
