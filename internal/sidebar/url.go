package sidebar

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultDocument is appended to directory URLs so they compare equal to
// the page they serve.
const DefaultDocument = "index.html"

// absoluteLink matches hrefs with a scheme ("https://") or protocol-relative
// hrefs ("//cdn.example"). Those are never prefixed.
var absoluteLink = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9+.-]*:)?//`)

// NormalizeURL strips the query string and fragment from raw and maps
// directory URLs to their default document, so "/book/?x=1#top" becomes
// "/book/index.html".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" && u.Path == "" {
		raw += "/"
	}
	return withDefaultDocument(raw)
}

func withDefaultDocument(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s + DefaultDocument
	}
	return s
}

// IsRelativeLink reports whether href is a same-site relative path: not
// empty, not fragment-only and not absolute.
func IsRelativeLink(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	return !absoluteLink.MatchString(href)
}

// RewriteHref prefixes relative hrefs with the root prefix so that
// root-relative tree links resolve from a page at any depth.
func RewriteHref(rootPrefix, href string) string {
	if !IsRelativeLink(href) {
		return href
	}
	return rootPrefix + href
}

// resolve returns href resolved against base, the way a browser computes a
// link's full address. Unparseable input is returned unchanged.
func resolve(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return withDefaultDocument(b.ResolveReference(ref).String())
}
