package http

import (
	"html/template"
	"net/http"
)

var pageTmpl = template.Must(template.New("page").Parse(indexHTML))

// PageHandler serves the single-page quiz UI.
func PageHandler(title string) http.HandlerFunc {
	data := struct{ Title string }{Title: title}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = pageTmpl.Execute(w, data)
	}
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    :root {
      --bg: #0f172a;
      --panel: rgba(255, 255, 255, 0.04);
      --panel-strong: rgba(255, 255, 255, 0.1);
      --text: #e2e8f0;
      --muted: #94a3b8;
      --accent: #22d3ee;
      --accent-2: #f97316;
      --good: #34d399;
      --bad: #f43f5e;
      --radius: 16px;
      font-family: "Segoe UI", "Helvetica Neue", sans-serif;
    }
    * { box-sizing: border-box; }
    body { margin: 0; min-height: 100vh; background: var(--bg); color: var(--text); display: flex; justify-content: center; padding: 32px 16px; }
    .shell { width: min(960px, 100%); display: grid; gap: 16px; }
    header { display: flex; align-items: center; justify-content: space-between; gap: 16px; }
    .title { font-size: 26px; font-weight: 700; }
    .card { background: var(--panel-strong); border: 1px solid rgba(255,255,255,0.06); border-radius: var(--radius); padding: 20px; }
    .row { display: flex; flex-wrap: wrap; gap: 10px; align-items: center; }
    .muted { color: var(--muted); }
    .good { color: var(--good); }
    .bad { color: var(--bad); }
    .cta { background: linear-gradient(120deg, var(--accent), var(--accent-2)); border: none; border-radius: 12px; color: #0b1221; font-weight: 700; padding: 10px 16px; cursor: pointer; }
    .cta:disabled { opacity: 0.4; cursor: default; }
    .ghost { background: transparent; border: 1px solid rgba(255,255,255,0.2); border-radius: 12px; color: var(--text); padding: 10px 16px; cursor: pointer; }
    .cells { display: grid; grid-template-columns: repeat(var(--cells, 18), 1fr); gap: 4px; margin: 8px 0; }
    .cell { height: 14px; border-radius: 4px; background: rgba(255,255,255,0.12); }
    .cell.correct { background: var(--good); }
    .cell.incorrect { background: var(--bad); }
    .question { font-size: 20px; font-weight: 700; margin-bottom: 14px; line-height: 1.4; white-space: pre-wrap; }
    .options { display: grid; gap: 10px; }
    .option { border-radius: 12px; padding: 12px 14px; border: 1px solid rgba(255,255,255,0.08); background: rgba(255,255,255,0.03); display: flex; gap: 10px; align-items: center; cursor: pointer; }
    .letter { width: 32px; height: 32px; border-radius: 10px; background: rgba(34,211,238,0.25); display: inline-flex; align-items: center; justify-content: center; font-weight: 700; }
    .pill { padding: 8px 12px; border-radius: 999px; font-weight: 600; font-size: 14px; }
    .pill.good { background: rgba(52,211,153,0.15); }
    .pill.bad { background: rgba(244,63,94,0.15); }
    .notice { padding: 10px 14px; border-radius: 12px; }
    .notice.info { background: rgba(34,211,238,0.12); }
    .notice.warning { background: rgba(249,115,22,0.18); }
    .notice.error { background: rgba(244,63,94,0.18); }
    .summary-row { display: flex; justify-content: space-between; gap: 12px; padding: 8px 12px; border-radius: 10px; background: rgba(255,255,255,0.03); font-size: 14px; margin-top: 6px; }
    .hidden { display: none; }
  </style>
</head>
<body>
  <div class="shell">
    <header>
      <div class="title">{{.Title}}</div>
      <button class="ghost" id="resetBtn">Reset</button>
    </header>

    <div class="card">
      <div class="row">
        <label>Question bank <input type="file" id="bankFile" accept=".xlsx,.xlsm,.csv"></label>
        <label>Missed questions <input type="file" id="missedFile" accept=".csv,.xlsx"></label>
      </div>
      <div class="row muted" id="bankInfo" style="margin-top:8px;">Upload a question bank to begin.</div>
      <div class="row" id="startRow" style="margin-top:8px;">
        <button class="cta" id="fullBtn">Full pass</button>
        <input type="number" id="randomCount" min="1" value="20" style="width:80px;">
        <button class="ghost" id="randomBtn">Random questions</button>
      </div>
    </div>

    <div id="notice" class="notice hidden"></div>

    <div class="card hidden" id="progressCard">
      <div class="row muted" id="counts"></div>
      <div class="cells" id="cells"></div>
    </div>

    <div class="card hidden" id="questionCard">
      <div class="muted" id="qNumber"></div>
      <div class="question" id="prompt"></div>
      <div class="notice warning hidden" id="qWarning"></div>
      <div class="options" id="options"></div>
      <div class="row" style="margin-top:16px;">
        <button class="cta" id="answerBtn">Answer</button>
        <button class="ghost" id="nextBtn">Next question</button>
        <div id="feedback" class="pill hidden"></div>
      </div>
    </div>

    <div class="card hidden" id="summaryCard">
      <div class="question" id="scoreLine"></div>
      <div id="mastery" class="good hidden">All answers correct. Nothing left to retry.</div>
      <div class="row" id="retryRow">
        <a class="ghost" id="exportLink" href="/api/export">Download errors (CSV)</a>
        <button class="cta" id="retryBtn">Retry errors</button>
      </div>
      <div id="summaryRows"></div>
    </div>
  </div>
  <script>
    let selected = "";
    let timer = null;
    const $ = (id) => document.getElementById(id);

    async function api(method, path, body) {
      const opts = { method: method, credentials: "same-origin", headers: {} };
      if (body instanceof FormData) {
        opts.body = body;
      } else if (body !== undefined) {
        opts.headers["Content-Type"] = "application/json";
        opts.body = JSON.stringify(body);
      }
      let res = await fetch(path, opts);
      if (res.status === 401) {
        await fetch("/api/session", { method: "POST", credentials: "same-origin" });
        res = await fetch(path, opts);
      }
      const data = await res.json().catch(() => ({}));
      if (!res.ok) {
        showNotice({ level: "error", message: data.error || res.statusText });
        return null;
      }
      return data;
    }

    function showNotice(n) {
      const el = $("notice");
      if (!n) { el.className = "notice hidden"; return; }
      el.className = "notice " + n.level;
      el.textContent = n.message;
    }

    function show(id, on) { $(id).classList.toggle("hidden", !on); }

    function render(v) {
      if (!v) return;
      clearTimeout(timer);
      showNotice(v.notice);
      $("bankInfo").textContent = v.bank
        ? v.bank.name + ": " + v.bank.questions + " questions" + (v.bank.dropped ? " (" + v.bank.dropped + " incomplete rows skipped)" : "")
        : "Upload a question bank to begin.";
      show("startRow", !!v.bank);

      const p = v.progress;
      show("progressCard", !!p);
      if (p) {
        $("counts").textContent = (p.position ? "Question " + p.position + " of " + p.total : "Finished " + p.total + " questions") +
          " · correct " + p.correct + " · incorrect " + p.incorrect + " · unanswered " + p.unanswered;
        const cells = $("cells");
        cells.style.setProperty("--cells", p.cells.length);
        cells.innerHTML = "";
        p.cells.forEach(st => {
          const c = document.createElement("div");
          c.className = "cell " + st;
          cells.appendChild(c);
        });
      }

      show("questionCard", !!v.question);
      if (v.question) renderQuestion(v);

      show("summaryCard", !!v.summary);
      if (v.summary) renderSummary(v.summary);

      if (v.auto_advance_ms) {
        timer = setTimeout(() => api("GET", "/api/state").then(render), v.auto_advance_ms + 50);
      }
    }

    function renderQuestion(v) {
      const q = v.question;
      const answered = !!v.feedback;
      $("qNumber").textContent = "Question " + q.number;
      $("prompt").textContent = q.text;
      show("qWarning", !!q.warning);
      $("qWarning").textContent = q.warning || "";

      const opts = $("options");
      opts.innerHTML = "";
      if (!answered) selected = "";
      (q.options || []).forEach(o => {
        const label = document.createElement("label");
        label.className = "option";
        const input = document.createElement("input");
        input.type = "radio";
        input.name = "option";
        input.value = o.label;
        input.disabled = answered;
        input.checked = answered ? v.feedback.chosen === o.label : selected === o.label;
        input.addEventListener("change", () => { selected = o.label; });
        const letter = document.createElement("span");
        letter.className = "letter";
        letter.textContent = o.label;
        const text = document.createElement("span");
        text.textContent = o.text;
        label.append(input, letter, text);
        opts.appendChild(label);
      });

      $("answerBtn").disabled = answered || !q.answerable;
      $("nextBtn").disabled = !answered;
      const fb = $("feedback");
      show("feedback", answered);
      if (answered) {
        fb.className = "pill " + (v.feedback.is_correct ? "good" : "bad");
        fb.textContent = v.feedback.is_correct
          ? "✅ Correct!"
          : "❌ Incorrect. Correct answer: " + v.feedback.correct;
      }
    }

    function renderSummary(s) {
      $("scoreLine").textContent = "Score: " + s.score + " / " + s.total + " (" + s.percent.toFixed(1) + "%)";
      show("mastery", s.mastery);
      show("retryRow", s.can_retry);
      const rows = $("summaryRows");
      rows.innerHTML = "";
      (s.incorrect || []).forEach(r => {
        const row = document.createElement("div");
        row.className = "summary-row";
        const q = document.createElement("span");
        q.textContent = r.text;
        const a = document.createElement("span");
        a.className = "bad";
        a.textContent = r.chosen + " → " + r.correct;
        row.append(q, a);
        rows.appendChild(row);
      });
    }

    async function upload(path, input) {
      if (!input.files.length) return;
      const fd = new FormData();
      fd.append("file", input.files[0]);
      render(await api("POST", path, fd));
      input.value = "";
    }

    $("bankFile").addEventListener("change", e => upload("/api/bank", e.target));
    $("missedFile").addEventListener("change", e => upload("/api/errors", e.target));
    $("resetBtn").onclick = async () => render(await api("POST", "/api/reset"));
    $("fullBtn").onclick = async () => render(await api("POST", "/api/pass", { mode: "full" }));
    $("randomBtn").onclick = async () =>
      render(await api("POST", "/api/pass", { mode: "random", count: parseInt($("randomCount").value, 10) || 0 }));
    $("answerBtn").onclick = async () => {
      if (!selected) {
        showNotice({ level: "warning", message: "Pick an option first." });
        return;
      }
      render(await api("POST", "/api/answer", { choice: selected }));
    };
    $("nextBtn").onclick = async () => render(await api("POST", "/api/next"));
    $("retryBtn").onclick = async () => render(await api("POST", "/api/retry"));

    api("GET", "/api/state").then(render);
  </script>
</body>
</html>
`
