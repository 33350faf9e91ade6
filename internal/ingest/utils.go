package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-analyzer/constants"
)

// ExtensionSet normalizes exts into a lookup set, defaulting to
// constants.BatchExtensions when exts is empty.
func ExtensionSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return constants.BatchExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
