package licensetext_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/notice-builder/internal/licensetext"
)

func TestMap(t *testing.T) {
	t.Parallel()

	m := licensetext.Map{"MIT": "mit text", "Empty": "  "}

	text, ok := m.LicenseText("MIT")
	require.True(t, ok)
	assert.Equal(t, "mit text", text)

	_, ok = m.LicenseText("Empty")
	assert.False(t, ok)

	_, ok = m.LicenseText("Nope")
	assert.False(t, ok)
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"MIT", "Apache-2.0", "GPL-2.0+", "LicenseRef-example"} {
		assert.NoError(t, licensetext.ValidateID(id), id)
	}

	for _, id := range []string{"", "../etc/passwd", "a/b", ".hidden", "MIT OR Apache-2.0"} {
		assert.ErrorIs(t, licensetext.ValidateID(id), licensetext.ErrInvalidLicenseID, id)
	}
}

func TestDirectory(t *testing.T) {
	t.Parallel()

	dir := licensetext.NewDirectory("testdata/custom")

	text, ok := dir.LicenseText("LicenseRef-example")
	require.True(t, ok)
	assert.Contains(t, text, "Example Corp")

	text, ok = dir.LicenseText("MIT")
	require.True(t, ok)
	assert.Equal(t, "Locally patched MIT text.\n", text)

	_, ok = dir.LicenseText("LicenseRef-blank")
	assert.False(t, ok, "whitespace-only files count as missing")

	_, ok = dir.LicenseText("../custom/MIT")
	assert.False(t, ok)

	var nilDir *licensetext.Directory
	_, ok = nilDir.LicenseText("MIT")
	assert.False(t, ok)
}

func TestBundled(t *testing.T) {
	t.Parallel()

	ids := licensetext.BundledIDs()
	assert.Equal(t, []string{"0BSD", "BSD-2-Clause", "BSD-3-Clause", "ISC", "MIT", "Zlib"}, ids)

	text, ok := licensetext.Bundled().LicenseText("MIT")
	require.True(t, ok)
	assert.Contains(t, text, "Permission is hereby granted")

	_, ok = licensetext.Bundled().LicenseText("Apache-2.0")
	assert.False(t, ok)
}

func TestChainOrder(t *testing.T) {
	t.Parallel()

	chain := licensetext.Chain{
		nil,
		licensetext.Map{"MIT": "first"},
		licensetext.Map{"MIT": "second", "ISC": "isc"},
	}

	text, ok := chain.LicenseText("MIT")
	require.True(t, ok)
	assert.Equal(t, "first", text)

	text, ok = chain.LicenseText("ISC")
	require.True(t, ok)
	assert.Equal(t, "isc", text)

	_, ok = chain.LicenseText("Zlib")
	assert.False(t, ok)
}

func TestNewDefaultPrefersDirectories(t *testing.T) {
	t.Parallel()

	p := licensetext.NewDefault([]string{"testdata/custom"}, true)

	text, ok := p.LicenseText("MIT")
	require.True(t, ok)
	assert.Equal(t, "Locally patched MIT text.\n", text)

	text, ok = p.LicenseText("ISC")
	require.True(t, ok)
	assert.Contains(t, text, "ISC License")

	noBundled := licensetext.NewDefault(nil, false)
	_, ok = noBundled.LicenseText("ISC")
	assert.False(t, ok)
}

func TestDirectoryFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"LicenseRef-x.txt": {Data: []byte("x text")}}

	text, ok := licensetext.NewDirectoryFS(fsys).LicenseText("LicenseRef-x")
	require.True(t, ok)
	assert.Equal(t, "x text", text)
}

func TestCacheMemoizesMisses(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	cache := licensetext.NewCache(licensetext.ProviderFunc(func(id string) (string, bool) {
		calls.Add(1)

		if id == "MIT" {
			return "mit", true
		}

		return "", false
	}))

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			cache.LicenseText("MIT")
		})
	}

	wg.Wait()

	calls.Store(0)

	text, ok := cache.LicenseText("MIT")
	require.True(t, ok)
	assert.Equal(t, "mit", text)

	cache.LicenseText("Nope")
	cache.LicenseText("Nope")

	assert.Equal(t, int32(1), calls.Load())
}
