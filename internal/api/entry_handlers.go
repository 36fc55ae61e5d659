package api

import (
	"net/http"
	"strings"

	"github.com/soaringjerry/PainMap/internal/middleware"
	"github.com/soaringjerry/PainMap/internal/utils"
)

// requireUser writes a localized 401 for anonymous callers.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		http.Error(w, utils.T(middleware.LocaleFromContext(r.Context()), "history.signin"), http.StatusUnauthorized)
		return "", false
	}
	return uid, true
}

// GET /api/entries: timeline summaries, newest first.
func (rt *Router) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := rt.entries.Timeline(r.Context(), uid)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": items})
}

// GET /api/entries/progress | /api/entries/export | /api/entries/{id}
func (rt *Router) handleEntryScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/entries/"), "/")
	if rest == "" || strings.Contains(rest, "/") {
		http.NotFound(w, r)
		return
	}
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	switch rest {
	case "progress":
		pts, err := rt.entries.Progress(r.Context(), uid)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"points": pts})
	case "export":
		b, err := rt.entries.ExportCSV(r.Context(), uid)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=painmap-entries.csv")
		_, _ = w.Write(b)
	default:
		e, err := rt.entries.Get(r.Context(), uid, rest)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}
