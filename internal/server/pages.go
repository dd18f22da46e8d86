package server

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/booknav/internal/sidebar"
)

// SidebarMarker is replaced by the sidebar when a page contains it.
// Pages without it get the sidebar right after the opening <body> tag.
const SidebarMarker = "<!-- booknav:sidebar -->"

// handlePage serves a file of the book. HTML pages get the sidebar computed
// for their own address injected.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(r.URL.Path, "/") {
		rel = path.Join(rel, sidebar.DefaultDocument)
	}
	abs := filepath.Join(s.cfg.BookDir, filepath.FromSlash(rel))

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("[Server] stat %s: %v", rel, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
		return
	}

	if !isHTML(rel) {
		http.ServeFile(w, r, abs)
		return
	}

	page, err := os.ReadFile(abs)
	if err != nil {
		log.Printf("[Server] read %s: %v", rel, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	c, load := s.pageLoad(r.Context(), sessionID(r.Context()), r.URL.RequestURI(), RootPrefix(rel))
	out := Inject(page, s.fragment(c, load), scriptTag())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(out)
}

func isHTML(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".html" || ext == ".htm"
}

// RootPrefix returns the relative path from a page back to the book root:
// "" for /index.html, "../" for /concepts/cps.html.
func RootPrefix(pagePath string) string {
	depth := strings.Count(strings.TrimPrefix(path.Clean("/"+pagePath), "/"), "/")
	return strings.Repeat("../", depth)
}

// fragment wraps the rendered sidebar in the scroll container and exposes
// the page load number, the scroll plan and chapter neighbours to the
// client script.
func (s *Server) fragment(c *sidebar.Controller, load int) string {
	var b strings.Builder
	plan := c.ScrollPlan()

	fmt.Fprintf(&b, `<nav id="booknav" class="sidebar" data-container="%s" data-load="%d" data-scroll-mode="%s"`,
		html.EscapeString(s.cfg.ContainerID), load, plan.Mode)
	switch plan.Mode {
	case sidebar.ScrollRestore:
		fmt.Fprintf(&b, ` data-scroll-offset="%d"`, plan.Offset)
	case sidebar.ScrollCenter:
		fmt.Fprintf(&b, ` data-scroll-target="%d"`, plan.Target)
	}
	prev, next := c.PrevNext()
	if prev != nil {
		fmt.Fprintf(&b, ` data-prev="%s"`, html.EscapeString(prev.Href))
	}
	if next != nil {
		fmt.Fprintf(&b, ` data-next="%s"`, html.EscapeString(next.Href))
	}
	fmt.Fprintf(&b, ">\n"+`<div id="%s" class="sidebar-scrollbox">`+"\n", html.EscapeString(s.cfg.ContainerID))
	b.WriteString(c.Render())
	b.WriteString("</div>\n</nav>\n")
	return b.String()
}

func scriptTag() string {
	return `<script src="` + ScriptPath + `" defer></script>` + "\n"
}

// Inject places the sidebar at SidebarMarker, or after the opening <body>
// tag, or at the start of the page. The script goes before </body>, or at
// the end.
func Inject(page []byte, fragment, script string) []byte {
	var out []byte
	lower := lowerASCII(page)

	switch i := bytes.Index(page, []byte(SidebarMarker)); {
	case i >= 0:
		out = concat(page[:i], []byte(fragment), page[i+len(SidebarMarker):])
	default:
		at := 0
		if b := bytes.Index(lower, []byte("<body")); b >= 0 {
			if end := bytes.IndexByte(page[b:], '>'); end >= 0 {
				at = b + end + 1
			}
		}
		out = concat(page[:at], []byte("\n"+fragment), page[at:])
	}

	lower = lowerASCII(out)
	if i := bytes.LastIndex(lower, []byte("</body>")); i >= 0 {
		return concat(out[:i], []byte(script), out[i:])
	}
	return append(out, script...)
}

// lowerASCII folds A-Z only, so offsets in the result index the input.
func lowerASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
