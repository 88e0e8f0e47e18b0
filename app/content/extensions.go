package content

import "strings"

// SourceExtensions are probed in order when mapping an address to a page
// source. The last entry is the implicit default.
var SourceExtensions = []string{".html", ".xhtml", ""}

// ProtectedExtensions mark page fragments that are never served on their own.
var ProtectedExtensions = []string{".inc.html", ".inc.xhtml", ".part.html"}

func IsProtected(path string) bool {
	for _, extension := range ProtectedExtensions {
		if strings.HasSuffix(path, extension) {
			return true
		}
	}
	return false
}

// IsSourceFile reports whether name carries a non-empty, unprotected source extension.
func IsSourceFile(name string) bool {
	if IsProtected(name) {
		return false
	}
	for _, extension := range SourceExtensions {
		if extension != "" && strings.HasSuffix(name, extension) {
			return true
		}
	}
	return false
}

// StripSourceExtension removes the first matching non-empty source extension.
func StripSourceExtension(path string) string {
	for _, extension := range SourceExtensions {
		if extension != "" && strings.HasSuffix(path, extension) {
			return strings.TrimSuffix(path, extension)
		}
	}
	return path
}
