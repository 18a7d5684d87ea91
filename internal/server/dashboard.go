package server

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/pfrederiksen/dfbnet-assist/internal/catalog"
	"github.com/pfrederiksen/dfbnet-assist/internal/season"
)

// DashboardData is what the dashboard page renders.
type DashboardData struct {
	ResultsURL   string
	TeamPrefix   string
	Season       string
	SearchDate   string
	Categories   []catalog.Entry
	Competitions []catalog.Entry
}

func (s *Server) dashboardData() DashboardData {
	all := catalog.All()
	return DashboardData{
		ResultsURL:   s.opts.Config.ResultsURL,
		TeamPrefix:   s.opts.Config.TeamPrefix,
		Season:       season.Full(s.opts.Now()),
		SearchDate:   season.DefaultSearchDate(),
		Categories:   all.TeamCategories,
		Competitions: all.CompetitionTypes,
	}
}

// Dashboard renders the single-page UI that drives the JSON API.
func Dashboard(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(dashboardHead)
		fmt.Fprintf(&b, "<h1>DFBnet Assist</h1>\n<p class=\"meta\">Saison %s &middot; Suchdatum %s</p>\n",
			templ.EscapeString(d.Season), templ.EscapeString(d.SearchDate))

		b.WriteString("<form id=\"run\">\n")
		fmt.Fprintf(&b, "<label>Ergebnisseite <input name=\"url\" type=\"url\" value=\"%s\"></label>\n",
			templ.EscapeString(d.ResultsURL))
		b.WriteString("<label>Mannschaftsart <select name=\"teamCategoryKey\"><option value=\"\">alle</option>")
		for _, e := range d.Categories {
			writeOption(&b, e)
		}
		b.WriteString("</select></label>\n")
		b.WriteString("<label>Wettkampfart <select name=\"competitionKeys\" multiple>")
		for _, e := range d.Competitions {
			writeOption(&b, e)
		}
		b.WriteString("</select></label>\n")
		b.WriteString("<label><input name=\"all_statuses\" type=\"checkbox\"> alle Spielstatus</label>\n")
		b.WriteString("<button type=\"submit\">Spiele laden</button> <button type=\"button\" id=\"reset\">Zurücksetzen</button>\n</form>\n")

		fmt.Fprintf(&b, "<label>Mannschaft <select id=\"team\" data-prefix=\"%s\"><option value=\"\">alle</option></select></label>\n",
			templ.EscapeString(d.TeamPrefix))
		b.WriteString("<p id=\"status\"></p>\n<table id=\"games\"><thead><tr><th>Spiel</th><th>Anstoß</th><th>ST</th><th>Heim</th><th>Gast</th><th>Status</th><th></th></tr></thead><tbody></tbody></table>\n<pre id=\"log\"></pre>\n")
		b.WriteString(dashboardScript)
		b.WriteString("</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeOption(b *strings.Builder, e catalog.Entry) {
	fmt.Fprintf(b, "<option value=\"%s\">%s</option>", templ.EscapeString(e.Key), templ.EscapeString(e.Label))
}

const dashboardHead = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>DFBnet Assist</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
label { display: block; margin: .4rem 0; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ccc; padding: .25rem .5rem; }
.meta { color: #666; }
</style>
</head>
<body>
`

const dashboardScript = `<script>
const $ = (id) => document.getElementById(id);
async function api(path, body) {
  const opts = body === undefined ? {} : {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body)};
  const res = await fetch(path, opts);
  const data = await res.json();
  if (!res.ok) throw new Error(data.error || res.statusText);
  return data;
}
function render(state) {
  const body = $("games").querySelector("tbody");
  body.replaceChildren();
  for (const g of state.games) {
    const tr = document.createElement("tr");
    for (const v of [g.match_number, g.kickoff, g.matchday, g.home_team, g.away_team, g.status]) {
      const td = document.createElement("td");
      td.textContent = v;
      tr.appendChild(td);
    }
    const td = document.createElement("td");
    if (g.report_link) {
      const btn = document.createElement("button");
      btn.textContent = "Schiedsrichter eintragen";
      btn.onclick = () => openMatch(g.index);
      td.appendChild(btn);
    }
    tr.appendChild(td);
    body.appendChild(tr);
  }
  $("status").textContent = state.active ? state.games.length + " von " + state.total + " Spielen" : "Automation ist nicht aktiv.";
}
async function loadTeams() {
  const data = await api("/api/teams?prefix=" + encodeURIComponent($("team").dataset.prefix));
  const sel = $("team");
  sel.length = 1;
  for (const t of data.teams) sel.add(new Option(t, t));
}
async function openMatch(index) {
  try {
    const r = await api("/api/open-match", {index});
    $("log").textContent = [r.url].concat(r.outcomes.map(o => o.first_name + " " + o.last_name + ": " + o.state), r.steps || []).join("\n");
  } catch (e) { $("log").textContent = e.message; }
}
$("run").onsubmit = async (ev) => {
  ev.preventDefault();
  const f = ev.target;
  try {
    render(await api("/api/run", {
      url: f.url.value,
      all_statuses: f.all_statuses.checked,
      teamCategoryKey: f.teamCategoryKey.value,
      competitionKeys: Array.from(f.competitionKeys.selectedOptions, o => o.value),
    }));
    await loadTeams();
  } catch (e) { $("status").textContent = e.message; }
};
$("team").onchange = async () => render(await api("/api/filter", {team: $("team").value}));
$("reset").onclick = async () => { await api("/api/reset", {}); render(await api("/api/state")); };
api("/api/state").then(render);
</script>
`
