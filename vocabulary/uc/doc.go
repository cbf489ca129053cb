// Package uc provides the Unity Catalog ontology vocabulary.
//
// The vocabulary mirrors the catalog's securable hierarchy as RDFS classes
// under a single namespace, plus the two predicates Tagsonomy reads:
//   - uc:name — the catalog-qualified dotted name of a securable
//   - uc:semanticAssignment — a link from a securable to an ontology class
//
// Securable classes (uc:Catalog, uc:Schema, uc:Table, uc:Volume, uc:Column)
// are all subclasses of uc:Securable and carry the catalog's securable type
// string as their rdfs:label, which is how tag derivation resolves a
// securable's type from its rdf:type assertion.
//
// Instance IRIs for catalog objects live under EntityNamespace and are
// minted from the object's dotted name with EntityIRI.
package uc
