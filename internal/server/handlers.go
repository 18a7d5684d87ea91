package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/catalog"
	"github.com/pfrederiksen/dfbnet-assist/internal/filter"
	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
	"github.com/pfrederiksen/dfbnet-assist/internal/report"
)

const (
	msgInactive       = "Automation ist nicht aktiv."
	msgBadIndex       = "Ungültiger Spielindex."
	msgBadBody        = "Ungültige Anfrage."
	msgNoSource       = "Keine Ergebnisseite angegeben (url oder html)."
	msgBadCategory    = "Unbekannte Mannschaftsart."
	msgBadCompetition = "Unbekannte Wettkampfart."
)

// indexedGame is a game with its position in the session list.
type indexedGame struct {
	Index int `json:"index"`
	match.UpcomingGame
}

type stateResponse struct {
	Active           bool          `json:"active"`
	Games            []indexedGame `json:"games"`
	Total            int           `json:"total"`
	Team             string        `json:"team"`
	Source           string        `json:"source"`
	TeamCategory     *string       `json:"selectedTeamCategory"`
	CompetitionTypes []string      `json:"selectedCompetitionKeys"`
	StartedAt        string        `json:"started_at,omitempty"`
}

type runRequest struct {
	URL              string   `json:"url"`
	HTML             string   `json:"html"`
	AllStatuses      bool     `json:"all_statuses"`
	TeamCategory     string   `json:"teamCategoryKey"`
	CompetitionTypes []string `json:"competitionKeys"`
}

type filterRequest struct {
	Team string `json:"team"`
}

type openMatchRequest struct {
	Index *int `json:"index"`
}

type outcomeJSON struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	State     string `json:"state"`
	FailedIn  string `json:"failed_in,omitempty"`
	Error     string `json:"error,omitempty"`
}

type openMatchResponse struct {
	Success   bool          `json:"success"`
	URL       string        `json:"url"`
	Outcomes  []outcomeJSON `json:"outcomes"`
	Abandoned string        `json:"abandoned,omitempty"`
	FollowUp  string        `json:"follow_up,omitempty"`
	Steps     []string      `json:"steps,omitempty"`
}

type lookupRequest struct {
	Context referee.MatchContext `json:"context"`
}

type lookupResponse struct {
	Referees []referee.Name `json:"referees"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Dashboard(s.dashboardData()).Render(r.Context(), w); err != nil {
		s.log.Error("Rendering dashboard failed", nil, err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := s.stateLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !decode(w, r, &req) {
		return
	}

	if req.TeamCategory != "" {
		if _, ok := catalog.Label(catalog.TeamCategories, req.TeamCategory); !ok {
			writeError(w, http.StatusBadRequest, msgBadCategory)
			return
		}
	}
	competitions := make([]string, 0, len(req.CompetitionTypes))
	for _, key := range req.CompetitionTypes {
		if _, ok := catalog.Label(catalog.CompetitionTypes, key); !ok {
			writeError(w, http.StatusBadRequest, msgBadCompetition)
			return
		}
		competitions = append(competitions, key)
	}

	opts := match.Options{Status: s.opts.Config.StatusFilter(), Logger: s.opts.Logger, Metrics: s.metrics}
	if req.AllStatuses {
		opts.Status = match.AllStatuses
	}

	var (
		games  []match.UpcomingGame
		source string
		err    error
	)
	switch {
	case strings.TrimSpace(req.HTML) != "":
		source = "html"
		games, err = match.ExtractHTML(strings.NewReader(req.HTML), opts)
	default:
		source = strings.TrimSpace(req.URL)
		if source == "" {
			source = s.opts.Config.ResultsURL
		}
		if source == "" {
			writeError(w, http.StatusBadRequest, msgNoSource)
			return
		}
		games, err = s.opts.Fetcher.FetchGames(r.Context(), source, opts)
	}
	if err != nil {
		s.log.Error("Run failed", logger.Fields{"source": source}, err)
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.session = &session{
		games:            games,
		source:           source,
		teamCategory:     req.TeamCategory,
		competitionTypes: competitions,
		startedAt:        s.opts.Now(),
	}
	resp := s.stateLocked()
	s.mu.Unlock()

	s.log.Info("Run finished", logger.Fields{"source": source, "games": len(games)})
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		stateResponse
	}{true, resp})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		writeError(w, http.StatusConflict, msgInactive)
		return
	}
	s.session.team = strings.TrimSpace(req.Team)
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		writeError(w, http.StatusConflict, msgInactive)
		return
	}
	prefix := s.opts.Config.TeamPrefix
	if q := r.URL.Query().Get("prefix"); q != "" {
		prefix = q
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prefix": prefix,
		"teams":  filter.TeamsWithPrefix(s.session.games, prefix),
	})
}

func (s *Server) handleOpenMatch(w http.ResponseWriter, r *http.Request) {
	var req openMatchRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, msgInactive)
		return
	}
	if req.Index == nil || *req.Index < 0 || *req.Index >= len(s.session.games) {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, msgBadIndex)
		return
	}
	game := s.session.games[*req.Index]
	s.mu.Unlock()

	url, err := report.ReportURL(game.ReportLink, s.opts.Config.BaseURL)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var steps bytes.Buffer
	browser := s.opts.Browser
	if browser == nil {
		browser = report.NewDryRun(&steps)
	}

	p := report.NewProcessor(s.matcher, report.Options{
		Context:  s.opts.Config.TargetContext,
		BaseURL:  s.opts.Config.BaseURL,
		Timeouts: s.opts.Timeouts,
		Logger:   s.opts.Logger,
		Metrics:  s.metrics,
		Sleep:    s.opts.Sleep,
	})
	page, rep, err := p.Open(r.Context(), browser, game)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrNoReportLink) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	if s.opts.Browser == nil {
		_ = page.Close()
	}

	resp := openMatchResponse{Success: rep.Abandoned == nil, URL: url, Outcomes: make([]outcomeJSON, 0, len(rep.Outcomes))}
	for _, o := range rep.Outcomes {
		out := outcomeJSON{FirstName: o.Referee.First(), LastName: o.Referee.Last(), State: o.State.String()}
		if o.State == report.StateSkipped {
			out.FailedIn = o.FailedIn.String()
			if o.Err != nil {
				out.Error = o.Err.Error()
			}
		}
		resp.Outcomes = append(resp.Outcomes, out)
	}
	if rep.Abandoned != nil {
		resp.Abandoned = rep.Abandoned.Error()
	}
	if rep.FollowUp != nil {
		resp.FollowUp = rep.FollowUp.Error()
	}
	if steps.Len() > 0 {
		resp.Steps = strings.Split(strings.TrimRight(steps.String(), "\n"), "\n")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefereeLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := req.Context
	if ctx.IsZero() {
		ctx = s.opts.Config.TargetContext
	}
	writeJSON(w, http.StatusOK, lookupResponse{Referees: s.matcher.ForContext(ctx)})
}

func (s *Server) handleCatalogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// stateLocked builds the state response. s.mu must be held.
func (s *Server) stateLocked() stateResponse {
	resp := stateResponse{Games: []indexedGame{}, CompetitionTypes: []string{}}
	if s.session == nil {
		return resp
	}
	sess := s.session
	resp.Active = true
	resp.Total = len(sess.games)
	resp.Team = sess.team
	resp.Source = sess.source
	resp.StartedAt = sess.startedAt.UTC().Format(time.RFC3339)
	if sess.teamCategory != "" {
		c := sess.teamCategory
		resp.TeamCategory = &c
	}
	resp.CompetitionTypes = append(resp.CompetitionTypes, sess.competitionTypes...)
	for i, g := range sess.games {
		if sess.team == "" || g.HasTeam(sess.team) {
			resp.Games = append(resp.Games, indexedGame{Index: i, UpcomingGame: g})
		}
	}
	return resp
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer drain(r.Body)
	body := http.MaxBytesReader(w, r.Body, 8<<20)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
