package server

import "net/http"

// ScriptPath is where the client script is served.
const ScriptPath = "/_booknav/booknav.js"

// clientScript applies the server's scroll plan, reports the sidebar offset
// before following a link, wires the section toggles and reloads the page
// when the navigation changes.
const clientScript = `(function () {
  "use strict";
  var nav = document.getElementById("booknav");
  if (!nav) return;
  var box = document.getElementById(nav.dataset.container) || nav;

  switch (nav.dataset.scrollMode) {
  case "restore":
    box.scrollTop = parseInt(nav.dataset.scrollOffset, 10) || 0;
    break;
  case "center":
    var id = 'li[data-nav-id="' + nav.dataset.scrollTarget + '"]';
    var target = box.querySelector(id + " > a:not(.toggle), " + id + " > span");
    if (target) target.scrollIntoView({block: "center"});
    break;
  }

  box.addEventListener("click", function (e) {
    var toggle = e.target.closest("a.toggle");
    if (toggle) {
      e.preventDefault();
      var item = toggle.closest("li.chapter-item");
      var open = item.classList.toggle("expanded");
      toggle.setAttribute("aria-expanded", String(open));
      return;
    }
    var link = e.target.closest("a[href]");
    if (!link || e.defaultPrevented || e.button !== 0) return;
    if (e.altKey || e.ctrlKey || e.metaKey || e.shiftKey) return;
    if (link.target && link.target !== "_self") return;
    if (link.origin !== location.origin) return;
    if (link.pathname === location.pathname && link.search === location.search && link.hash) return;
    e.preventDefault();
    var go = function () { location.href = link.href; };
    fetch("/api/scroll", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({
        offset: Math.round(box.scrollTop),
        load: parseInt(nav.dataset.load, 10) || 0
      }),
      credentials: "same-origin"
    }).then(go, go);
  });

  document.addEventListener("keydown", function (e) {
    if (e.altKey || e.ctrlKey || e.metaKey || e.shiftKey) return;
    if (e.target.closest("input, textarea, select")) return;
    var href = e.key === "ArrowLeft" ? nav.dataset.prev : e.key === "ArrowRight" ? nav.dataset.next : "";
    if (href) window.location.href = href;
  });

  if ("WebSocket" in window) {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws/reload");
    ws.onmessage = function (m) {
      if (m.data === "reload") location.reload();
    };
  }
})();
`

func serveScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(clientScript))
}
