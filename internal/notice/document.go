// Package notice assembles license findings into a notice document and
// renders it as text.
package notice

import (
	"slices"

	"github.com/StinkyLord/notice-builder/internal/model"
)

// Separator delimits headers, license sections, and footers.
const Separator = "\n----\n\n"

// Default headers, chosen by whether any license findings exist.
const (
	HeaderWithFindings    = "This project contains or depends on third-party software components pursuant to the following licenses:\n"
	HeaderWithoutFindings = "This project neither contains or depends on any third-party software components.\n"
)

// DefaultHeader returns the header for a notice with or without findings.
func DefaultHeader(empty bool) string {
	if empty {
		return HeaderWithoutFindings
	}

	return HeaderWithFindings
}

// Document is the in-progress notice: verbatim header blocks, per-component
// findings that are merged at render time, and verbatim footer blocks.
type Document struct {
	Headers  []string
	Findings map[model.Identifier]model.LicenseFindings
	Footers  []string
}

// NewDocument returns a document holding a copy of findings and the default
// header.
func NewDocument(findings map[model.Identifier]model.LicenseFindings) Document {
	doc := Document{Findings: cloneFindings(findings)}
	doc.Headers = []string{DefaultHeader(len(doc.Findings) == 0)}

	return doc
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	return Document{
		Headers:  slices.Clone(d.Headers),
		Findings: cloneFindings(d.Findings),
		Footers:  slices.Clone(d.Footers),
	}
}

// Components returns the component ids in d, sorted.
func (d Document) Components() []model.Identifier {
	return model.SortedIdentifiers(d.Findings)
}

func cloneFindings(in map[model.Identifier]model.LicenseFindings) map[model.Identifier]model.LicenseFindings {
	out := make(map[model.Identifier]model.LicenseFindings, len(in))
	for id, findings := range in {
		out[id] = findings.Clone()
	}

	return out
}
