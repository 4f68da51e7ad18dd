// Package oracle implements component H: the compiler oracle bridge. The
// Crystal compiler itself is treated as an external black-box tool, invoked
// via `crystal tool implementations` / `crystal tool context` (spec.md §1,
// §6) rather than reimplemented.
package oracle

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIToPath is the single normalization boundary for file:// URI <-> native
// path translation (DESIGN.md open-question decision #4): every other
// package works with forward-slash URIs or already-translated absolute
// paths, never touching path separators itself.
func URIToPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, "file://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	p := u.Path
	if strings.HasPrefix(p, "/") && len(p) > 2 && p[2] == ':' {
		// file:///C:/foo on Windows — strip the leading slash before the drive letter.
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// PathToURI is the inverse of URIToPath. A ':' in the path (a Windows drive
// letter) is encoded as %3A.
func PathToURI(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return "file://" + strings.ReplaceAll(u.EscapedPath(), ":", "%3A")
}
