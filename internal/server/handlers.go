package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matsen/labpage/internal/about"
	"github.com/matsen/labpage/internal/dom"
	"github.com/matsen/labpage/internal/fetch"
	"github.com/matsen/labpage/internal/publications"
)

// effectJSON is one transition the client should play.
type effectJSON struct {
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Speed  string `json:"speed"`
}

// actionResponse is returned by every state-changing endpoint.
type actionResponse struct {
	Active  string       `json:"active,omitempty"`
	ID      string       `json:"id,omitempty"`
	Open    *bool        `json:"open,omitempty"`
	About   string       `json:"about,omitempty"`
	Title   string       `json:"title,omitempty"`
	HTML    string       `json:"html,omitempty"`
	Effects []effectJSON `json:"effects"`
}

type stateResponse struct {
	Active        string   `json:"active"`
	OpenAbstracts []string `json:"open_abstracts"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.ctrl.View(func(doc *dom.Document) error {
		return doc.Render(w)
	})
	if err != nil {
		s.logger.Sugar().Warnw("rendering page", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.State()
	resp := stateResponse{Active: st.Active, OpenAbstracts: []string{}}
	for id := range st.OpenAbstracts {
		resp.OpenAbstracts = append(resp.OpenAbstracts, id)
	}
	sortIDs(resp.OpenAbstracts)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")

	err := s.ctrl.Select(r.Context(), keyword)
	switch {
	case errors.Is(err, publications.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, dom.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case fetch.IsNotFound(err), fetch.IsRateLimited(err), errors.Is(err, fetch.ErrNetwork):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := actionResponse{Active: keyword}
	s.ctrl.View(func(doc *dom.Document) error {
		if c := doc.GetElementByID(publications.ContainerID); c != nil {
			resp.HTML = dom.InnerHTML(c)
		}
		resp.Effects = drainEffects(doc)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAbstract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ctrl.ToggleAbstract(id); err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	open := s.ctrl.State().IsOpen(id)
	resp := actionResponse{ID: id, Open: &open}
	s.ctrl.View(func(doc *dom.Document) error {
		resp.Effects = drainEffects(doc)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	checked, err := strconv.ParseBool(r.URL.Query().Get("checked"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "checked must be true or false")
		return
	}

	var resp actionResponse
	err = s.ctrl.View(func(doc *dom.Document) error {
		toggle := about.NewToggle(doc)
		if err := toggle.SetChecked(checked); err != nil {
			return err
		}
		resp.About = toggle.State().String()
		resp.Title = toggle.State().Title()
		resp.Effects = drainEffects(doc)
		return nil
	})
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// drainEffects returns and clears the transitions recorded on doc.
func drainEffects(doc *dom.Document) []effectJSON {
	out := []effectJSON{}
	for _, e := range doc.Effects() {
		out = append(out, effectJSON{Target: e.Target, Kind: string(e.Kind), Speed: e.Speed.String()})
	}
	doc.ResetEffects()
	return out
}

// sortIDs orders abstract ids numerically, falling back to string order.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		x, errX := strconv.Atoi(ids[i])
		y, errY := strconv.Atoi(ids[j])
		if errX == nil && errY == nil {
			return x < y
		}
		return ids[i] < ids[j]
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
