package sidebar

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"https://book.example/concepts/cps.html", "https://book.example/concepts/cps.html"},
		{"https://book.example/concepts/cps.html?x=1", "https://book.example/concepts/cps.html"},
		{"https://book.example/concepts/cps.html#heading", "https://book.example/concepts/cps.html"},
		{"https://book.example/concepts/cps.html#a?b", "https://book.example/concepts/cps.html"},
		{"https://book.example/concepts/", "https://book.example/concepts/index.html"},
		{"https://book.example/concepts/?q=1", "https://book.example/concepts/index.html"},
		{"https://book.example", "https://book.example/index.html"},
		{"/book/", "/book/index.html"},
		{"  /a.html  ", "/a.html"},
		{"", "index.html"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.input); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRewriteHref(t *testing.T) {
	tests := []struct {
		prefix, href, want string
	}{
		{"../../", "concepts/cps.html", "../../concepts/cps.html"},
		{"../../", "#section", "#section"},
		{"../../", "https://example.com/x", "https://example.com/x"},
		{"../../", "//cdn.example/x.js", "//cdn.example/x.js"},
		{"../../", "git+ssh://host/repo", "git+ssh://host/repo"},
		{"../../", "", ""},
		{"", "concepts/cps.html", "concepts/cps.html"},
		{"../", "../sibling.html", "../../sibling.html"},
	}
	for _, tt := range tests {
		if got := RewriteHref(tt.prefix, tt.href); got != tt.want {
			t.Errorf("RewriteHref(%q, %q) = %q, want %q", tt.prefix, tt.href, got, tt.want)
		}
	}
}

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"cps.html", true},
		{"./cps.html", true},
		{"/abs/path.html", true},
		{"#top", false},
		{"http://x", false},
		{"//x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRelativeLink(tt.href); got != tt.want {
			t.Errorf("IsRelativeLink(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://book.example/concepts/cps.html", "../concepts/cps.html", "https://book.example/concepts/cps.html"},
		{"https://book.example/concepts/cps.html", "", "https://book.example/concepts/cps.html"},
		{"https://book.example/a/b.html", "../", "https://book.example/index.html"},
		{"/concepts/cps.html", "../index.html", "/index.html"},
		{"https://book.example/a.html", "https://other.example/x", "https://other.example/x"},
	}
	for _, tt := range tests {
		if got := resolve(tt.base, tt.href); got != tt.want {
			t.Errorf("resolve(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}
