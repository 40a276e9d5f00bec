package constants

import "strings"

// DocumentFormats holds the input formats the ingest loader understands.
var DocumentFormats = []string{"TXT", "PDF"}

// AllowedExtensions holds the default document extensions for directory ingest.
// Table sidecars (<name>.tables.json) are picked up next to these files.
var AllowedExtensions = map[string]struct{}{
	"txt": {},
	"pdf": {},
}

// TablesSuffix is appended to a document's base name to locate its table dump.
const TablesSuffix = ".tables.json"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the document format for an extension, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "txt":
		return "TXT"
	case "pdf":
		return "PDF"
	default:
		return ""
	}
}
