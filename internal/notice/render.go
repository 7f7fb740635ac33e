package notice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/StinkyLord/notice-builder/internal/licensetext"
)

// WarningKind classifies a non-fatal rendering problem.
type WarningKind int

const (
	// WarningLicenseTextMissing means a license had no text and its section
	// was left out.
	WarningLicenseTextMissing WarningKind = iota + 1
)

func (k WarningKind) String() string {
	switch k {
	case WarningLicenseTextMissing:
		return "license-text-missing"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning is a non-fatal condition recorded while rendering.
type Warning struct {
	Kind    WarningKind
	License string
}

func (w Warning) String() string {
	switch w.Kind {
	case WarningLicenseTextMissing:
		return fmt.Sprintf("no license text found for license %q, it is omitted from the notice", w.License)
	default:
		return fmt.Sprintf("%s: %s", w.Kind, w.License)
	}
}

// Rendition is a fully rendered notice.
type Rendition struct {
	Text     []byte
	Licenses []string
	Warnings []Warning
}

// Renderer turns a document and its merged findings into notice text.
type Renderer struct {
	texts  licensetext.Provider
	logger *slog.Logger
}

// NewRenderer returns a renderer resolving license texts through texts. A
// nil logger discards warnings; a nil provider resolves nothing.
func NewRenderer(texts licensetext.Provider, logger *slog.Logger) *Renderer {
	if texts == nil {
		texts = licensetext.Map{}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Renderer{texts: texts, logger: logger}
}

// Render writes doc's headers, one section per license of merged in sorted
// order, and doc's footers into a buffer. A document without headers gets
// the default header. Licenses without text are skipped with a warning.
// All line endings in the result are "\n".
func (r *Renderer) Render(ctx context.Context, doc Document, merged MergedFindings) Rendition {
	var (
		buf bytes.Buffer
		out Rendition
	)

	headers := doc.Headers
	if len(headers) == 0 {
		headers = []string{DefaultHeader(len(merged) == 0)}
	}

	buf.WriteString(strings.Join(headers, Separator))

	for _, license := range merged.Licenses() {
		text, ok := r.texts.LicenseText(license)
		if !ok {
			w := Warning{Kind: WarningLicenseTextMissing, License: license}
			r.logger.WarnContext(ctx, w.String(), "license", license)
			out.Warnings = append(out.Warnings, w)

			continue
		}

		buf.WriteString(Separator)

		copyrights := merged[license].Sorted()
		for _, c := range copyrights {
			buf.WriteString(c)
			buf.WriteByte('\n')
		}

		if len(copyrights) > 0 {
			buf.WriteByte('\n')
		}

		buf.WriteString(text)
		out.Licenses = append(out.Licenses, license)
	}

	for _, footer := range doc.Footers {
		buf.WriteString(Separator)
		buf.WriteString(footer)
	}

	out.Text = NormalizeLineEndings(buf.Bytes())

	return out
}

// NormalizeLineEndings rewrites "\r\n" and lone "\r" to "\n".
func NormalizeLineEndings(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))

	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}
