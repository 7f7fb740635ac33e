package licensetext

import (
	"embed"
	"slices"
	"strings"
)

//go:embed texts/*.txt
var bundledTexts embed.FS

// Bundled returns a Provider for the license texts compiled into the binary.
func Bundled() *Directory {
	return &Directory{fsys: mustSub(bundledTexts, "texts")}
}

// BundledIDs lists the license ids with a bundled text, sorted.
func BundledIDs() []string {
	entries, err := bundledTexts.ReadDir("texts")
	if err != nil {
		return nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimSuffix(e.Name(), ".txt"))
	}

	slices.Sort(ids)

	return ids
}
