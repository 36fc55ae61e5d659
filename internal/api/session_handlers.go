package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/appearance"
	"github.com/soaringjerry/PainMap/internal/dial"
	"github.com/soaringjerry/PainMap/internal/middleware"
	"github.com/soaringjerry/PainMap/internal/render"
	"github.com/soaringjerry/PainMap/internal/services"
	"github.com/soaringjerry/PainMap/internal/utils"
)

// POST /api/sessions {variant?, dial_style?}
// Missing fields fall back to the caller's stored preferences.
func (rt *Router) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in services.CreateSessionInput
	if err := decodeJSON(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if owner := middleware.OwnerFromContext(r.Context()); owner != "" && (in.Variant == "" || in.DialStyle == "") {
		prefs, err := rt.prefs.Get(r.Context(), owner)
		if err != nil {
			rt.log.Warn("load preferences failed", zap.String("owner", owner), zap.Error(err))
		} else {
			if in.Variant == "" {
				in.Variant = string(prefs.Variant)
			}
			if in.DialStyle == "" {
				in.DialStyle = string(prefs.DialStyle)
			}
		}
	}
	in.Creator = callerFromContext(r)
	snap, err := rt.sessions.Create(in)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// /api/sessions/{id}[/action]
func (rt *Router) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			rt.respondSnapshot(w, r)(rt.sessions.Get(id))
		case http.MethodDelete:
			if err := rt.sessions.Delete(id); err != nil {
				rt.writeServiceError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case "tap":
		var req pointRequest
		if !requirePost(w, r) || !decodeOrFail(w, r, &req) {
			return
		}
		snap, outcome, err := rt.sessions.Tap(id, req.X, req.Y)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome, "session": snap})
	case "adjust":
		var req struct {
			Level int `json:"level"`
		}
		if !requirePost(w, r) || !decodeOrFail(w, r, &req) {
			return
		}
		rt.respondSnapshot(w, r)(rt.sessions.Adjust(id, req.Level))
	case "dial/down", "dial/move":
		var req pointRequest
		if !requirePost(w, r) || !decodeOrFail(w, r, &req) {
			return
		}
		p := dial.Point{X: req.X, Y: req.Y}
		if action == "dial/down" {
			rt.respondSnapshot(w, r)(rt.sessions.DialDown(id, p))
		} else {
			rt.respondSnapshot(w, r)(rt.sessions.DialMove(id, p))
		}
	case "dial/up":
		if requirePost(w, r) {
			rt.respondSnapshot(w, r)(rt.sessions.DialUp(id))
		}
	case "confirm":
		if requirePost(w, r) {
			rt.respondSnapshot(w, r)(rt.sessions.Confirm(id))
		}
	case "cancel":
		if requirePost(w, r) {
			rt.respondSnapshot(w, r)(rt.sessions.Cancel(id))
		}
	case "clear":
		if requirePost(w, r) {
			rt.respondSnapshot(w, r)(rt.sessions.ClearAll(id))
		}
	case "notes":
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Notes string `json:"notes"`
		}
		if !decodeOrFail(w, r, &req) {
			return
		}
		rt.respondSnapshot(w, r)(rt.sessions.SetNotes(id, req.Notes))
	case "submit":
		if requirePost(w, r) {
			rt.handleSubmit(w, r, id)
		}
	case "dial.png":
		rt.handleDialImage(w, r, id)
	case "markers.png":
		rt.handleMarkersImage(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeOrFail(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(w, r, v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (rt *Router) respondSnapshot(w http.ResponseWriter, r *http.Request) func(*services.SessionSnapshot, error) {
	return func(snap *services.SessionSnapshot, err error) {
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// POST /api/sessions/{id}/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request, id string) {
	locale := middleware.LocaleFromContext(r.Context())
	entry, snap, err := rt.sessions.Submit(r.Context(), id, callerFromContext(r))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, map[string]any{"saved": false, "message": utils.T(locale, "entry.empty"), "session": snap})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"saved": true, "message": utils.T(locale, "entry.saved"), "entry": entry, "session": snap})
}

func callerFromContext(r *http.Request) services.Caller {
	return services.Caller{
		UserID:   middleware.UserIDFromContext(r.Context()),
		DeviceID: middleware.DeviceIDFromContext(r.Context()),
	}
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func writePNG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// GET /api/sessions/{id}/dial.png?size=
func (rt *Router) handleDialImage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := rt.sessions.Get(id)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	if snap.Pending == nil {
		rt.writeServiceError(w, r, services.ErrNoPendingPoint)
		return
	}
	pal, ok := appearance.ByName(snap.Palette)
	if !ok {
		pal = appearance.ForStyle(snap.DialStyle)
	}
	var buf bytes.Buffer
	if err := render.Dial(&buf, dial.NewMapper(snap.DialStyle), pal, snap.Pending.Intensity, queryInt(r, "size")); err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writePNG(w, &buf)
}

// GET /api/sessions/{id}/markers.png?width=&height=
func (rt *Router) handleMarkersImage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := rt.sessions.Get(id)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	markers := make([]render.Marker, 0, len(snap.Confirmed)+1)
	for _, m := range snap.Confirmed {
		c, err := appearance.ParseHex(m.Color)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		markers = append(markers, render.Marker{X: m.X, Y: m.Y, Color: c})
	}
	if p := snap.Pending; p != nil {
		markers = append(markers, render.Marker{X: p.X, Y: p.Y, Color: p.Appearance.Color, Pending: true})
	}
	var buf bytes.Buffer
	if err := render.Markers(&buf, markers, queryInt(r, "width"), queryInt(r, "height")); err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writePNG(w, &buf)
}
