package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/loan-compare/constants"
)

// AllowedExt checks if a file extension is in the default document set (txt/pdf).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// DocumentID is the file name without directory and extension.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TablesPath is the sidecar table dump that belongs to a document.
func TablesPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + constants.TablesSuffix
}

func extSet(includeExts []string) map[string]struct{} {
	if len(includeExts) == 0 {
		return constants.AllowedExtensions
	}
	exts := map[string]struct{}{}
	for _, e := range includeExts {
		e = constants.NormalizeExt(strings.TrimSpace(e))
		if e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}
