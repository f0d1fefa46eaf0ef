//go:build acceptance
// +build acceptance

package acceptance

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestGame serves a minimal canvas game that mimics the startup sequence of
// the applications the harness verifies: a splash screen with a start
// control, a click-advanced dialogue overlay and a gameplay phase rendered
// onto a canvas.
type TestGame struct {
	Server *httptest.Server
	URL    string
}

// TestGameOptions controls which parts of the game page are rendered.
type TestGameOptions struct {
	// WithoutStartControl omits the start button so interaction targets are
	// missing on purpose.
	WithoutStartControl bool
}

// NewTestGame starts an HTTP server hosting the test game page.
func NewTestGame(t *testing.T, options TestGameOptions) *TestGame {
	t.Helper()

	page := gamePage
	if options.WithoutStartControl {
		page = gamePageWithoutStart
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})

	server := httptest.NewServer(mux)

	return &TestGame{
		Server: server,
		URL:    server.URL + "/",
	}
}

// Close shuts down the test game server.
func (tg *TestGame) Close() {
	tg.Server.Close()
}

const gamePage = `<!DOCTYPE html>
<html>
<head><title>Neo-Tokyo Rival Academies</title>
<style>
  body { margin: 0; background: #000; }
  #stage { position: relative; width: 1280px; height: 720px; }
  canvas { display: block; }
  .overlay { position: absolute; inset: 0; display: flex; align-items: center; justify-content: center; color: #fff; font-family: monospace; }
  .hidden { display: none; }
  button { font-size: 24px; padding: 16px 32px; }
</style>
</head>
<body>
<div id="stage">
  <canvas id="game" width="1280" height="720"></canvas>
  <div id="splash" class="overlay">
    <button id="start">INITIATE STORY MODE</button>
  </div>
  <div id="dialogue" class="overlay hidden">
    <p id="line"></p>
  </div>
</div>
<script>
  const lines = [
    "Transfer student, huh?",
    "The academy does not take kindly to outsiders.",
    "Prove yourself in the courtyard at dawn.",
  ];
  let lineIndex = 0;
  const ctx = document.getElementById("game").getContext("2d");
  ctx.fillStyle = "#223";
  ctx.fillRect(0, 0, 1280, 720);
  console.log("game booted");

  document.getElementById("start").addEventListener("click", () => {
    document.getElementById("splash").classList.add("hidden");
    document.getElementById("dialogue").classList.remove("hidden");
    document.getElementById("line").textContent = lines[0];
    console.log("story mode initiated");
  });

  document.getElementById("dialogue").addEventListener("click", () => {
    lineIndex++;
    if (lineIndex < lines.length) {
      document.getElementById("line").textContent = lines[lineIndex];
      return;
    }
    document.getElementById("dialogue").classList.add("hidden");
    ctx.fillStyle = "#4a4";
    ctx.fillRect(560, 280, 160, 160);
    console.log("gameplay started");
  });
</script>
</body>
</html>
`

const gamePageWithoutStart = `<!DOCTYPE html>
<html>
<head><title>Neo-Tokyo Rival Academies</title></head>
<body style="margin:0;background:#000">
<canvas id="game" width="1280" height="720"></canvas>
<script>
  const ctx = document.getElementById("game").getContext("2d");
  ctx.fillStyle = "#223";
  ctx.fillRect(0, 0, 1280, 720);
  console.log("game booted without menu");
</script>
</body>
</html>
`
