// Package licensetext resolves license identifiers to the full license text
// printed in a notice.
package licensetext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// ErrInvalidLicenseID is returned for identifiers that cannot name a license
// text file.
var ErrInvalidLicenseID = errors.New("invalid license id")

// Provider looks up the text of a license. The boolean result is false when
// no text is known for id.
type Provider interface {
	LicenseText(id string) (string, bool)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(id string) (string, bool)

// LicenseText calls f(id).
func (f ProviderFunc) LicenseText(id string) (string, bool) { return f(id) }

// Map is an in-memory Provider keyed by license id.
type Map map[string]string

// LicenseText implements Provider.
func (m Map) LicenseText(id string) (string, bool) {
	text, ok := m[id]
	if !ok || strings.TrimSpace(text) == "" {
		return "", false
	}

	return text, true
}

var licenseIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+\-]*$`)

// ValidateID rejects ids that could escape a text directory.
func ValidateID(id string) error {
	if !licenseIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidLicenseID, id)
	}

	return nil
}

// Directory reads license texts from files named after the license id, with
// or without a ".txt" extension. Custom texts for LicenseRef-* ids usually
// live here.
type Directory struct {
	fsys fs.FS
}

// NewDirectory returns a Provider reading from the directory at path.
func NewDirectory(path string) *Directory {
	return &Directory{fsys: os.DirFS(path)}
}

// NewDirectoryFS returns a Provider reading from fsys.
func NewDirectoryFS(fsys fs.FS) *Directory {
	return &Directory{fsys: fsys}
}

// LicenseText implements Provider.
func (d *Directory) LicenseText(id string) (string, bool) {
	if d == nil || ValidateID(id) != nil {
		return "", false
	}

	for _, name := range []string{id, id + ".txt"} {
		data, err := fs.ReadFile(d.fsys, filepath.ToSlash(name))
		if err != nil {
			continue
		}

		if strings.TrimSpace(string(data)) == "" {
			continue
		}

		return string(data), true
	}

	return "", false
}

// Chain asks each provider in order and returns the first text found.
type Chain []Provider

// LicenseText implements Provider.
func (c Chain) LicenseText(id string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}

		if text, ok := p.LicenseText(id); ok {
			return text, true
		}
	}

	return "", false
}

type cacheEntry struct {
	text  string
	found bool
}

// Cache memoizes lookups of an underlying Provider, including misses. It is
// safe for concurrent use.
type Cache struct {
	next Provider

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache wraps next with a lookup cache.
func NewCache(next Provider) *Cache {
	return &Cache{next: next, entries: make(map[string]cacheEntry)}
}

// LicenseText implements Provider.
func (c *Cache) LicenseText(id string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()

	if ok {
		return e.text, e.found
	}

	text, found := c.next.LicenseText(id)

	c.mu.Lock()
	c.entries[id] = cacheEntry{text: text, found: found}
	c.mu.Unlock()

	return text, found
}

// NewDefault builds the standard lookup: custom directories first, in order,
// then the bundled texts when bundled is true. The result is cached.
func NewDefault(directories []string, bundled bool) Provider {
	chain := make(Chain, 0, len(directories)+1)
	for _, dir := range directories {
		chain = append(chain, NewDirectory(dir))
	}

	if bundled {
		chain = append(chain, Bundled())
	}

	return NewCache(chain)
}
