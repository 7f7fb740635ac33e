package notice_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/notice-builder/internal/licensetext"
	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/notice"
)

func TestRenderSkipsMissingLicenseText(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r := notice.NewRenderer(licensetext.Map{"MIT": "MIT TEXT\n"}, logger)

	merged := notice.MergedFindings{
		"MIT":            model.NewCopyrightSet("Alice"),
		"UnknownLicense": model.NewCopyrightSet("Bob"),
	}
	doc := notice.Document{Headers: []string{notice.HeaderWithFindings}}

	out := r.Render(context.Background(), doc, merged)
	text := string(out.Text)

	assert.Contains(t, text, "Alice\n\nMIT TEXT\n")
	assert.NotContains(t, text, "UnknownLicense")
	assert.NotContains(t, text, "Bob")
	assert.Equal(t, 1, bytes.Count(out.Text, []byte(notice.Separator)))

	require.Len(t, out.Warnings, 1)
	assert.Equal(t, notice.WarningLicenseTextMissing, out.Warnings[0].Kind)
	assert.Equal(t, "UnknownLicense", out.Warnings[0].License)
	assert.Equal(t, []string{"MIT"}, out.Licenses)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "UnknownLicense")
}

func TestRenderEmptyFindings(t *testing.T) {
	t.Parallel()

	r := notice.NewRenderer(licensetext.Map{"MIT": "MIT TEXT\n"}, nil)

	doc := notice.NewDocument(nil)
	out := r.Render(context.Background(), doc, notice.Merge(doc.Findings))

	assert.Equal(t, notice.HeaderWithoutFindings, string(out.Text))
	assert.Empty(t, out.Warnings)
	assert.Empty(t, out.Licenses)
}

func TestRenderDefaultsHeaderWhenNoneLeft(t *testing.T) {
	t.Parallel()

	r := notice.NewRenderer(licensetext.Map{"MIT": "MIT TEXT\n"}, nil)

	out := r.Render(context.Background(), notice.Document{}, notice.MergedFindings{})
	assert.Equal(t, notice.HeaderWithoutFindings, string(out.Text))

	out = r.Render(context.Background(), notice.Document{}, notice.MergedFindings{"MIT": nil})
	assert.Equal(t, notice.HeaderWithFindings+notice.Separator+"MIT TEXT\n", string(out.Text))
}

func TestRenderLayout(t *testing.T) {
	t.Parallel()

	r := notice.NewRenderer(licensetext.Map{
		"Apache-2.0": "APACHE TEXT\n",
		"MIT":        "MIT TEXT\n",
	}, nil)

	doc := notice.Document{
		Headers: []string{"Header one\n", "Header two\n"},
		Footers: []string{"Footer one\n", "Footer two\n"},
	}
	merged := notice.MergedFindings{
		"MIT":        model.NewCopyrightSet(),
		"Apache-2.0": model.NewCopyrightSet("Co Y", "Co X"),
	}

	want := "Header one\n" + notice.Separator + "Header two\n" +
		notice.Separator + "Co X\nCo Y\n\nAPACHE TEXT\n" +
		notice.Separator + "MIT TEXT\n" +
		notice.Separator + "Footer one\n" +
		notice.Separator + "Footer two\n"

	out := r.Render(context.Background(), doc, merged)
	assert.Equal(t, want, string(out.Text))
}

func TestRenderNormalizesLineEndings(t *testing.T) {
	t.Parallel()

	r := notice.NewRenderer(licensetext.Map{"MIT": "line one\r\nline two\rline three\n"}, nil)

	doc := notice.Document{
		Headers: []string{"Header\r\n"},
		Footers: []string{"Footer\r\n"},
	}

	out := r.Render(context.Background(), doc, notice.MergedFindings{"MIT": model.NewCopyrightSet("Alice")})

	assert.NotContains(t, string(out.Text), "\r")
	assert.Equal(t,
		"Header\n"+notice.Separator+"Alice\n\nline one\nline two\nline three\n"+notice.Separator+"Footer\n",
		string(out.Text))
}

func TestNilProviderResolvesNothing(t *testing.T) {
	t.Parallel()

	out := notice.NewRenderer(nil, nil).Render(context.Background(), notice.Document{},
		notice.MergedFindings{"MIT": model.NewCopyrightSet("Alice")})

	assert.Equal(t, notice.HeaderWithFindings, string(out.Text))
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0].String(), `"MIT"`)
}
