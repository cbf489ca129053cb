// Package export serializes the ontology graph for interchange with RDF
// tooling. Securable instances, classes, and properties all come out as
// plain triples grouped by subject.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/tagsonomy/graph"
	"github.com/c360studio/tagsonomy/vocabulary/rdfs"
	"github.com/c360studio/tagsonomy/vocabulary/uc"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ParseFormat parses a format name, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, nil
	case "jsonld", "json-ld":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// defaultPrefixes returns the namespace prefixes used in Turtle output.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  rdfs.RDFNamespace,
		"rdfs": rdfs.Namespace,
		"uc":   uc.Namespace,
		"user": uc.EntityNamespace,
	}
}

// Export serializes the graph to the specified format.
func Export(g *graph.Graph, format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return toTurtle(g), nil
	case FormatNTriples:
		return toNTriples(g), nil
	case FormatJSONLD:
		return toJSONLD(g), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// toTurtle serializes triples grouped by subject with prefix declarations.
func toTurtle(g *graph.Graph) string {
	var sb strings.Builder

	prefixes := defaultPrefixes()
	names := make([]string, 0, len(prefixes))
	for name := range prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", name, prefixes[name]))
	}
	sb.WriteString("\n")

	for _, subject := range g.AllSubjects() {
		var lines []string
		for _, predicate := range g.PredicatesOf(subject) {
			for _, object := range g.Objects(subject, predicate) {
				lines = append(lines, fmt.Sprintf("    <%s> %s", predicate, formatObject(object)))
			}
		}

		sb.WriteString(fmt.Sprintf("<%s>\n", subject))
		for i, line := range lines {
			sb.WriteString(line)
			if i < len(lines)-1 {
				sb.WriteString(" ;\n")
			} else {
				sb.WriteString(" .\n")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// toNTriples serializes one triple per line.
func toNTriples(g *graph.Graph) string {
	var sb strings.Builder
	for _, subject := range g.AllSubjects() {
		for _, predicate := range g.PredicatesOf(subject) {
			for _, object := range g.Objects(subject, predicate) {
				sb.WriteString(fmt.Sprintf("<%s> <%s> %s .\n", subject, predicate, formatObject(object)))
			}
		}
	}
	return sb.String()
}

// toJSONLD serializes a flat @graph with prefix @context.
func toJSONLD(g *graph.Graph) string {
	var sb strings.Builder

	sb.WriteString("{\n  \"@context\": {\n")
	prefixes := defaultPrefixes()
	names := make([]string, 0, len(prefixes))
	for name := range prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		sb.WriteString(fmt.Sprintf("    %q: %q", name, prefixes[name]))
		if i < len(names)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  },\n  \"@graph\": [\n")

	subjects := g.AllSubjects()
	for i, subject := range subjects {
		sb.WriteString("    {\n")
		sb.WriteString(fmt.Sprintf("      \"@id\": %q", subject))

		for _, predicate := range g.PredicatesOf(subject) {
			objects := g.Objects(subject, predicate)
			sb.WriteString(",\n")
			sb.WriteString(fmt.Sprintf("      %q: ", predicate))
			if len(objects) == 1 {
				sb.WriteString(formatObjectJSONLD(objects[0]))
			} else {
				parts := make([]string, len(objects))
				for j, o := range objects {
					parts[j] = formatObjectJSONLD(o)
				}
				sb.WriteString("[" + strings.Join(parts, ", ") + "]")
			}
		}

		sb.WriteString("\n    }")
		if i < len(subjects)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("  ]\n}\n")
	return sb.String()
}

// isIRI reports whether an object value is an IRI rather than a literal.
func isIRI(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// formatObject formats an object for Turtle and N-Triples output.
func formatObject(v string) string {
	if isIRI(v) {
		return fmt.Sprintf("<%s>", v)
	}
	return fmt.Sprintf("\"%s\"", escapeString(v))
}

// formatObjectJSONLD formats an object for JSON-LD output.
func formatObjectJSONLD(v string) string {
	if isIRI(v) {
		return fmt.Sprintf("{\"@id\": %q}", v)
	}
	return fmt.Sprintf("%q", v)
}

// escapeString escapes special characters for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
