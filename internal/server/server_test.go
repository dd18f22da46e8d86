package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/booknav/internal/nav"
	"github.com/ziadkadry99/booknav/internal/session"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// testBook lays out a two-chapter book and the matching tree:
// Home, Concepts > CPS.
func testBook(t *testing.T) (string, *nav.Tree) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "<html><body><main>home</main></body></html>")
	writeFile(t, filepath.Join(dir, "concepts", "index.html"), "<html><body class=\"x\"><main>concepts</main></body></html>")
	writeFile(t, filepath.Join(dir, "concepts", "cps.html"), "<html><body>"+SidebarMarker+"<main>cps</main></body></html>")
	writeFile(t, filepath.Join(dir, "style.css"), "body{}")

	tree := nav.New()
	tree.Add(nav.None, nav.Node{Label: "Home", Href: "index.html", Kind: nav.KindLink})
	concepts := tree.Add(nav.None, nav.Node{Label: "Concepts", Href: "concepts/index.html", Kind: nav.KindLink})
	tree.Add(concepts, nav.Node{Label: "CPS", Href: "concepts/cps.html", Kind: nav.KindLink})
	return dir, tree
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, *http.Client) {
	t.Helper()
	dir, tree := testBook(t)
	srv := New(Config{BookDir: dir, AliasLanding: true}, tree, session.NewMemoryStore())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return srv, ts, &http.Client{Jar: jar}
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

var loadAttr = regexp.MustCompile(`data-load="(\d+)"`)

// loadOf returns the page load number embedded in a served page.
func loadOf(t *testing.T, body string) int {
	t.Helper()
	m := loadAttr.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("page has no load number:\n%s", body)
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func postScroll(t *testing.T, client *http.Client, base string, offset, load int) int {
	t.Helper()
	body := fmt.Sprintf(`{"offset":%d,"load":%d}`, offset, load)
	resp, err := client.Post(base+"/api/scroll", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestHealthCheck(t *testing.T) {
	srv := New(Config{Port: 0}, nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true}, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestPageInjectsSidebar(t *testing.T) {
	_, ts, client := newTestServer(t)

	code, body := get(t, client, ts.URL+"/concepts/cps.html")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	for _, want := range []string{
		`<a href="../concepts/cps.html" class="active" aria-current="page">CPS</a>`,
		`<a href="../index.html">Home</a>`,
		`data-scroll-mode="center"`,
		`data-prev="../concepts/index.html"`,
		`<script src="` + ScriptPath + `" defer></script>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q\n%s", want, body)
		}
	}
	if strings.Contains(body, SidebarMarker) {
		t.Error("marker was not replaced")
	}
	if strings.Index(body, `id="booknav"`) > strings.Index(body, "<main>") {
		t.Error("sidebar should replace the marker ahead of the content")
	}
}

func TestDirectoryPage(t *testing.T) {
	_, ts, client := newTestServer(t)

	code, body := get(t, client, ts.URL+"/concepts/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, `<a href="../concepts/index.html" class="active" aria-current="page">Concepts</a>`) {
		t.Errorf("directory page did not resolve to its index:\n%s", body)
	}

	noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := noRedirect.Get(ts.URL + "/concepts")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMovedPermanently || resp.Header.Get("Location") != "/concepts/" {
		t.Errorf("got %d to %q, want redirect to /concepts/", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLandingPage(t *testing.T) {
	_, ts, client := newTestServer(t)

	_, body := get(t, client, ts.URL+"/")
	if !strings.Contains(body, `<a href="index.html" class="active" aria-current="page">Home</a>`) {
		t.Errorf("landing page should activate Home:\n%s", body)
	}
}

func TestStaticAndMissing(t *testing.T) {
	_, ts, client := newTestServer(t)

	code, body := get(t, client, ts.URL+"/style.css")
	if code != http.StatusOK || body != "body{}" {
		t.Errorf("static file: %d %q", code, body)
	}
	if code, _ := get(t, client, ts.URL+"/nope.html"); code != http.StatusNotFound {
		t.Errorf("missing page: expected 404, got %d", code)
	}
}

func TestScrollContinuity(t *testing.T) {
	_, ts, client := newTestServer(t)

	// First contact issues the session cookie.
	_, body := get(t, client, ts.URL+"/index.html")

	if code := postScroll(t, client, ts.URL, 137, loadOf(t, body)); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}

	_, body = get(t, client, ts.URL+"/concepts/cps.html")
	if !strings.Contains(body, `data-scroll-mode="restore" data-scroll-offset="137"`) {
		t.Errorf("offset not restored:\n%s", body)
	}

	_, body = get(t, client, ts.URL+"/concepts/cps.html")
	if !strings.Contains(body, `data-scroll-mode="center"`) {
		t.Errorf("offset restored twice:\n%s", body)
	}
}

func TestLoadNumbersIncrease(t *testing.T) {
	_, ts, client := newTestServer(t)

	_, body := get(t, client, ts.URL+"/index.html")
	first := loadOf(t, body)
	_, body = get(t, client, ts.URL+"/concepts/cps.html")
	if second := loadOf(t, body); second != first+1 {
		t.Errorf("load numbers %d then %d", first, second)
	}
}

func TestLateScrollIsDiscarded(t *testing.T) {
	_, ts, client := newTestServer(t)

	_, body := get(t, client, ts.URL+"/index.html")
	stale := loadOf(t, body)

	// The next page was fetched before the report from the first one landed.
	_, body = get(t, client, ts.URL+"/concepts/cps.html")
	if strings.Contains(body, `data-scroll-mode="restore"`) {
		t.Fatalf("nothing was reported yet:\n%s", body)
	}
	if code := postScroll(t, client, ts.URL, 240, stale); code != http.StatusConflict {
		t.Errorf("late report: expected 409, got %d", code)
	}

	_, body = get(t, client, ts.URL+"/concepts/")
	if !strings.Contains(body, `data-scroll-mode="center"`) || strings.Contains(body, `data-scroll-offset`) {
		t.Errorf("late offset surfaced on a later load:\n%s", body)
	}
}

func TestScrollWithoutPageLoad(t *testing.T) {
	_, ts, client := newTestServer(t)
	if code := postScroll(t, client, ts.URL, 10, 1); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
}

func TestScrollIsPerSession(t *testing.T) {
	_, ts, client := newTestServer(t)
	_, body := get(t, client, ts.URL+"/index.html")
	if code := postScroll(t, client, ts.URL, 50, loadOf(t, body)); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}

	stranger := &http.Client{}
	_, body = get(t, stranger, ts.URL+"/concepts/cps.html")
	if strings.Contains(body, `data-scroll-mode="restore"`) {
		t.Error("another session saw the stored offset")
	}
}

func TestScrollBadRequest(t *testing.T) {
	_, ts, client := newTestServer(t)
	resp, err := client.Post(ts.URL+"/api/scroll", "application/json", strings.NewReader(`not json`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// sidebarResponse mirrors the JSON sent by /api/sidebar.
type sidebarResponse struct {
	Page struct {
		RootPrefix string `json:"root_prefix"`
	} `json:"page"`
	Entries []struct {
		Href string `json:"href"`
	} `json:"entries"`
	Active int `json:"active"`
	Scroll struct {
		Mode   string `json:"mode"`
		Offset int    `json:"offset"`
	} `json:"scroll"`
}

func getSidebar(t *testing.T, client *http.Client, url string) (sidebarResponse, http.Header) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var view sidebarResponse
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return view, resp.Header
}

func TestSidebarAPI(t *testing.T) {
	_, ts, client := newTestServer(t)

	view, _ := getSidebar(t, client, ts.URL+"/api/sidebar?url=/concepts/cps.html%3Fq%3D1")
	if view.Page.RootPrefix != "../" {
		t.Errorf("root prefix = %q, want ../", view.Page.RootPrefix)
	}
	if view.Active != 2 {
		t.Errorf("active = %d, want 2", view.Active)
	}
	if view.Scroll.Mode != "center" {
		t.Errorf("scroll mode = %q, want center", view.Scroll.Mode)
	}

	if code, _ := get(t, client, ts.URL+"/api/sidebar"); code != http.StatusBadRequest {
		t.Errorf("missing url: expected 400, got %d", code)
	}
}

func TestSidebarAPIRestores(t *testing.T) {
	_, ts, client := newTestServer(t)

	_, hdr := getSidebar(t, client, ts.URL+"/api/sidebar?url=/index.html")
	load, err := strconv.Atoi(hdr.Get("X-Booknav-Load"))
	if err != nil {
		t.Fatalf("load header: %v", err)
	}
	if code := postScroll(t, client, ts.URL, -5, load); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}

	view, _ := getSidebar(t, client, ts.URL+"/api/sidebar?url=/concepts/cps.html")
	if view.Scroll.Mode != "restore" || view.Scroll.Offset != 0 {
		t.Errorf("scroll = %+v, want restore at 0", view.Scroll)
	}
}

func TestSidebarAPIExplicitPrefix(t *testing.T) {
	_, ts, client := newTestServer(t)

	view, _ := getSidebar(t, client, ts.URL+"/api/sidebar?url=/book/concepts/cps.html&prefix=../../")
	if got := view.Entries[0].Href; got != "../../index.html" {
		t.Errorf("home href = %q, want ../../index.html", got)
	}
}

func TestScript(t *testing.T) {
	_, ts, client := newTestServer(t)
	code, body := get(t, client, ts.URL+ScriptPath)
	if code != http.StatusOK {
		t.Fatalf("script: %d", code)
	}
	for _, want := range []string{
		"/api/scroll",
		"load: parseInt(nav.dataset.load, 10)",
		".then(go, go)",
		`" > a:not(.toggle), " + id + " > span"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("script missing %q", want)
		}
	}
	if strings.Contains(body, "keepalive") {
		t.Error("script should wait for the scroll report before navigating")
	}
}

func TestReloadBroadcast(t *testing.T) {
	srv, ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/reload"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	next := nav.New()
	next.Add(nav.None, nav.Node{Label: "Only", Href: "index.html", Kind: nav.KindLink})
	srv.SetTree(next)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != ReloadMessage {
		t.Errorf("message = %q, want %q", msg, ReloadMessage)
	}
	if srv.Tree().Len() != 1 {
		t.Errorf("tree not swapped")
	}
}

func TestRootPrefix(t *testing.T) {
	tests := map[string]string{
		"/index.html":          "",
		"index.html":           "",
		"/concepts/cps.html":   "../",
		"/a/b/c.html":          "../../",
		"/concepts/index.html": "../",
	}
	for in, want := range tests {
		if got := RootPrefix(in); got != want {
			t.Errorf("RootPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInject(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"marker", "<body><p>" + SidebarMarker + "</p></body>", "<body><p>NAV</p>JS</body>"},
		{"after body", `<BODY class="x"><p>t</p></BODY>`, `<BODY class="x">` + "\nNAV<p>t</p>JS</BODY>"},
		{"fragment", "<p>t</p>", "\nNAV<p>t</p>JS"},
		{
			"case folding changes length",
			"<html><head><title>İstanbul İİİİ</title></head><body><p>x</p></body></html>",
			"<html><head><title>İstanbul İİİİ</title></head><body>\nNAV<p>x</p>JS</body></html>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Inject([]byte(tt.page), "NAV", "JS")
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("Inject = %q, want %q", got, tt.want)
			}
		})
	}
}
