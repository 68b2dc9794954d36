package pipeline

import (
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteImagePaths turns relative <img src> values into absolute file://
// URLs under baseDir, so a page loaded from a temporary file still finds
// the problem images. Everything except rewritten attributes is copied
// byte for byte, which keeps math delimiters and scripts intact. Paths that
// would leave baseDir are left unchanged. An empty baseDir is a no-op.
func RewriteImagePaths(htmlContent, baseDir string) (string, error) {
	if baseDir == "" {
		return htmlContent, nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	z := html.NewTokenizer(strings.NewReader(htmlContent))
	var b strings.Builder
	b.Grow(len(htmlContent))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return b.String(), nil
		}

		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.Write(raw)
			continue
		}

		tok := z.Token()
		if tok.DataAtom != atom.Img || !rewriteSrc(&tok, absBase) {
			b.Write(raw)
			continue
		}
		b.WriteString(tok.String())
	}
}

// rewriteSrc resolves the src attribute of tok against baseDir and reports
// whether it changed.
func rewriteSrc(tok *html.Token, baseDir string) bool {
	for i, attr := range tok.Attr {
		if attr.Key != "src" || !isRelativePath(attr.Val) {
			continue
		}
		abs := filepath.Join(baseDir, filepath.FromSlash(attr.Val))
		if !isPathUnderDir(abs, baseDir) {
			return false
		}
		tok.Attr[i].Val = pathToFileURL(abs)
		return true
	}
	return false
}

// isRelativePath reports whether path is neither a URL, an anchor nor
// absolute.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:"} {
		if strings.HasPrefix(path, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir reports whether absPath is dir or inside it.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL, Windows paths
// included.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
