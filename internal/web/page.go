package web

import (
	"bytes"
	"html/template"
	"net/http"
)

// PageData feeds the single page template.
type PageData struct {
	Years []int
}

// RenderIndexPage renders the page to bytes.
func RenderIndexPage(data PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexPageTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Handler serves the page. The template is rendered once at wiring time; the
// page itself is static and driven entirely by the state API and the event
// stream.
func Handler(data PageData) (http.Handler, error) {
	body, err := RenderIndexPage(data)
	if err != nil {
		return nil, err
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}), nil
}

var indexPageTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>TimeMirror</title>
    <style>
      :root {
        --bg: #0b1020;
        --panel: #111832;
        --text: #e9edf7;
        --muted: #a5b0cc;
        --border: rgba(255, 255, 255, 0.10);
        --accent: #7aa2ff;
        --good: #2dd4bf;
        --bad: #fb7185;
        --sans: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial;
      }
      * { box-sizing: border-box; }
      body {
        margin: 0;
        font-family: var(--sans);
        color: var(--text);
        background: radial-gradient(1000px 700px at 20% 0%, rgba(122,162,255,0.16), transparent 55%), var(--bg);
      }
      .wrap { max-width: 1080px; margin: 0 auto; padding: 28px 20px 60px; }
      h1 { font-size: 26px; margin: 0 0 4px; }
      .sub { color: var(--muted); margin: 0 0 24px; }
      .panel {
        background: var(--panel);
        border: 1px solid var(--border);
        border-radius: 12px;
        padding: 18px;
        margin-bottom: 18px;
      }
      .dropzone {
        border: 2px dashed var(--border);
        border-radius: 10px;
        padding: 26px;
        text-align: center;
        color: var(--muted);
        cursor: pointer;
      }
      .dropzone.hover { border-color: var(--accent); color: var(--text); }
      .dropzone img { max-height: 180px; max-width: 100%; border-radius: 8px; }
      .sliders { display: grid; grid-template-columns: repeat(3, 1fr); gap: 18px; margin-top: 4px; }
      .slider label { display: block; font-size: 14px; margin-bottom: 6px; }
      .slider input { width: 100%; }
      .slider .val { color: var(--accent); font-weight: 600; }
      button.go {
        background: var(--accent);
        color: #0b1020;
        border: 0;
        border-radius: 8px;
        padding: 12px 26px;
        font-size: 15px;
        font-weight: 700;
        cursor: pointer;
      }
      button.go:disabled { opacity: 0.45; cursor: not-allowed; }
      .msg { margin-left: 14px; color: var(--bad); }
      .cards { display: grid; grid-template-columns: repeat(5, 1fr); gap: 12px; }
      .card {
        background: var(--panel);
        border: 1px solid var(--border);
        border-radius: 12px;
        padding: 10px;
        text-align: center;
      }
      .card h3 { margin: 2px 0 8px; font-size: 15px; }
      .card .slot {
        height: 150px;
        display: flex;
        align-items: center;
        justify-content: center;
        color: var(--muted);
        font-size: 13px;
      }
      .card img { max-width: 100%; max-height: 150px; border-radius: 8px; }
      .card .failed { color: var(--bad); }
      .card .spin {
        width: 22px; height: 22px;
        border: 3px solid var(--border);
        border-top-color: var(--accent);
        border-radius: 50%;
        animation: spin 0.9s linear infinite;
      }
      @keyframes spin { to { transform: rotate(360deg); } }
      .card a { color: var(--good); font-size: 13px; }
      .toolbar { margin-top: 14px; }
      .toolbar a { color: var(--good); }
      @media (max-width: 860px) { .cards { grid-template-columns: repeat(2, 1fr); } .sliders { grid-template-columns: 1fr; } }
    </style>
  </head>
  <body>
    <div class="wrap">
      <h1>TimeMirror</h1>
      <p class="sub">Upload a portrait, tune your lifestyle, and see yourself across the decades.</p>

      <div class="panel">
        <div id="dropzone" class="dropzone">
          <span id="drop-hint">Drop a portrait here or click to browse</span>
          <img id="preview" hidden />
        </div>
        <input id="file" type="file" accept="image/*" hidden />
      </div>

      <div class="panel">
        <div class="sliders">
          <div class="slider">
            <label>Smoking <span class="val" id="smoking-val">0</span>/10</label>
            <input id="smoking" type="range" min="0" max="10" step="1" value="0" />
          </div>
          <div class="slider">
            <label>Sun exposure <span class="val" id="sun-val">2</span>/10</label>
            <input id="sun" type="range" min="0" max="10" step="1" value="2" />
          </div>
          <div class="slider">
            <label>Stress <span class="val" id="stress-val">3</span>/10</label>
            <input id="stress" type="range" min="0" max="10" step="1" value="3" />
          </div>
        </div>
        <div class="toolbar">
          <button id="generate" class="go">Generate timeline</button>
          <span id="message" class="msg"></span>
          <a id="archive" href="/v1/timeline/archive" hidden>Download all (.zip)</a>
        </div>
      </div>

      <div id="cards" class="cards">
        {{range .Years}}
        <div class="card" data-year="{{.}}">
          <h3>{{.}}</h3>
          <div class="slot">Awaiting generation</div>
        </div>
        {{end}}
      </div>
    </div>

    <script>
      const dropzone = document.getElementById("dropzone");
      const fileInput = document.getElementById("file");
      const preview = document.getElementById("preview");
      const dropHint = document.getElementById("drop-hint");
      const generateBtn = document.getElementById("generate");
      const message = document.getElementById("message");
      const archiveLink = document.getElementById("archive");

      const sliders = {
        smoking: { input: document.getElementById("smoking"), label: document.getElementById("smoking-val") },
        sun: { input: document.getElementById("sun"), label: document.getElementById("sun-val") },
        stress: { input: document.getElementById("stress"), label: document.getElementById("stress-val") },
      };
      for (const key of Object.keys(sliders)) {
        const s = sliders[key];
        s.input.addEventListener("input", () => { s.label.textContent = s.input.value; });
      }

      let inProgress = false;

      function setMessage(text) { message.textContent = text || ""; }

      function setInProgress(flag) {
        inProgress = flag;
        generateBtn.disabled = flag;
        if (flag) archiveLink.hidden = true;
      }

      function cardEl(year) {
        return document.querySelector('.card[data-year="' + year + '"] .slot');
      }

      function renderCard(year, status, reason) {
        const slot = cardEl(year);
        if (!slot) return;
        if (status === "pending") {
          slot.innerHTML = inProgress ? '<div class="spin"></div>' : "Awaiting generation";
        } else if (status === "success") {
          const src = "/v1/timeline/" + year + "/image?t=" + Date.now();
          slot.innerHTML =
            '<div><img src="' + src + '" /><br /><a href="' + src + '" download>Download</a></div>';
        } else if (status === "failed") {
          slot.innerHTML = '<span class="failed" title="' + (reason || "") + '">Generation failed</span>';
        }
      }

      function applyState(st) {
        setInProgress(st.in_progress);
        sliders.smoking.input.value = st.smoking; sliders.smoking.label.textContent = st.smoking;
        sliders.sun.input.value = st.sun_exposure; sliders.sun.label.textContent = st.sun_exposure;
        sliders.stress.input.value = st.stress; sliders.stress.label.textContent = st.stress;
        if (st.has_upload && st.preview_key) {
          showPreview("/v1/upload/preview/" + st.preview_key.replace(/^upload\//, ""));
        }
        let anySuccess = false;
        for (const card of st.cards) {
          renderCard(card.year, card.status, card.reason);
          if (card.status === "success") anySuccess = true;
        }
        archiveLink.hidden = st.in_progress || !anySuccess;
      }

      function showPreview(url) {
        preview.src = url;
        preview.hidden = false;
        dropHint.hidden = true;
      }

      async function uploadFile(file) {
        const form = new FormData();
        form.append("image", file, file.name);
        setMessage("");
        const resp = await fetch("/v1/upload", { method: "POST", body: form });
        const body = await resp.json();
        if (!resp.ok) {
          setMessage(body.error ? body.error.message : "upload failed");
          return;
        }
        showPreview(body.preview_url);
      }

      dropzone.addEventListener("click", () => fileInput.click());
      fileInput.addEventListener("change", () => {
        if (fileInput.files.length > 0) uploadFile(fileInput.files[0]);
      });
      dropzone.addEventListener("dragover", (e) => { e.preventDefault(); dropzone.classList.add("hover"); });
      dropzone.addEventListener("dragleave", () => dropzone.classList.remove("hover"));
      dropzone.addEventListener("drop", (e) => {
        e.preventDefault();
        dropzone.classList.remove("hover");
        if (e.dataTransfer.files.length > 0) uploadFile(e.dataTransfer.files[0]);
      });

      generateBtn.addEventListener("click", async () => {
        setMessage("");
        const resp = await fetch("/v1/generate", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({
            smoking: parseInt(sliders.smoking.input.value, 10),
            sun_exposure: parseInt(sliders.sun.input.value, 10),
            stress: parseInt(sliders.stress.input.value, 10),
          }),
        });
        if (!resp.ok) {
          const body = await resp.json();
          setMessage(body.error ? body.error.message : "failed to start generation");
        }
      });

      const source = new EventSource("/v1/events");
      source.onmessage = (e) => {
        const ev = JSON.parse(e.data);
        if (ev.type === "snapshot") {
          applyState(ev.data);
        } else if (ev.type === "run.started") {
          setInProgress(true);
          setMessage("");
        } else if (ev.type === "card.updated") {
          renderCard(ev.year, ev.status, ev.reason);
        } else if (ev.type === "run.finished") {
          setInProgress(false);
          const anySuccess = document.querySelectorAll(".card img").length > 0;
          archiveLink.hidden = !anySuccess;
        }
      };
    </script>
  </body>
</html>
`))
