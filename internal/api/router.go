package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/appearance"
	"github.com/soaringjerry/PainMap/internal/bodymap"
	"github.com/soaringjerry/PainMap/internal/middleware"
	"github.com/soaringjerry/PainMap/internal/services"
	"github.com/soaringjerry/PainMap/internal/utils"
)

type Router struct {
	store    Store
	sessions *services.SessionService
	entries  *services.EntryService
	auth     *services.AuthService
	prefs    *services.PreferenceService
	log      *zap.Logger
}

// Options wires the router to its collaborators. A nil Store means an
// in-memory store; a nil Preferences falls back to the Store.
type Options struct {
	Store       Store
	Preferences services.PreferenceStore
	Logger      *zap.Logger
}

func NewRouter() *Router {
	return NewRouterWithOptions(Options{})
}

func NewRouterWithOptions(opts Options) *Router {
	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var prefStore services.PreferenceStore = store
	if opts.Preferences != nil {
		prefStore = opts.Preferences
	}
	entries := services.NewEntryService(newEntryStoreAdapter(store), log.Named("entries"))
	return &Router{
		store:    store,
		sessions: services.NewSessionService(entries, log.Named("sessions")),
		entries:  entries,
		auth:     services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
		prefs:    services.NewPreferenceService(prefStore),
		log:      log,
	}
}

// Sessions exposes the session registry for the idle sweeper.
func (rt *Router) Sessions() *services.SessionService { return rt.sessions }

func (rt *Router) Register(mux *http.ServeMux) {
	me := middleware.RequireAuth(http.HandlerFunc(rt.handleMe))
	mux.HandleFunc("/api/auth/register", rt.handleRegister)        // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)              // POST
	mux.Handle("/api/auth/me", me)                                 // GET
	mux.HandleFunc("/api/sessions", rt.handleSessions)             // POST
	mux.HandleFunc("/api/sessions/", rt.handleSessionScoped)       // /api/sessions/{id}/...
	mux.HandleFunc("/api/classify", rt.handleClassify)             // GET
	mux.HandleFunc("/api/regions", rt.handleRegions)               // GET
	mux.HandleFunc("/api/appearance", rt.handleAppearance)         // GET
	mux.HandleFunc("/api/entries", rt.handleEntries)               // GET
	mux.HandleFunc("/api/entries/", rt.handleEntryScoped)          // GET progress|export|{id}
	mux.HandleFunc("/api/preferences", rt.handlePreferences)       // GET
	mux.HandleFunc("/api/preferences/", rt.handlePreferenceScoped) // GET|PUT variant, PUT dial_style
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	return dec.Decode(v)
}

func (rt *Router) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if errors.Is(err, services.ErrSessionNotFound) {
		http.Error(w, utils.T(locale, "session.notfound"), http.StatusNotFound)
		return
	}
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusBadRequest
		switch se.Code {
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorBadGateway:
			status = http.StatusBadGateway
			rt.log.Warn("upstream failed", zap.String("path", r.URL.Path), zap.Error(se.Err))
		}
		http.Error(w, se.Message, status)
		return
	}
	rt.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// POST /api/auth/register {email, password}
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	rt.handleCredentials(w, r, rt.auth.Register)
}

// POST /api/auth/login {email, password}
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	rt.handleCredentials(w, r, rt.auth.Login)
}

func (rt *Router) handleCredentials(w http.ResponseWriter, r *http.Request, fn func(email, password string) (*services.AuthResult, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := fn(req.Email, req.Password)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/auth/me
func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, _ := middleware.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user_id": c.UID, "email": c.Email})
}

// GET /api/classify?x=&y=
func (rt *Router) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be numbers", http.StatusBadRequest)
		return
	}
	part := bodymap.Classify(x, y)
	writeJSON(w, http.StatusOK, map[string]any{
		"x":         bodymap.ClampPercent(x),
		"y":         bodymap.ClampPercent(y),
		"body_part": part,
		"label":     utils.T(middleware.LocaleFromContext(r.Context()), part),
	})
}

type regionView struct {
	bodymap.Region
	Label string `json:"label"`
}

// GET /api/regions
// The region table for drawing hit areas over the silhouette.
func (rt *Router) handleRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	regions := bodymap.Default().Regions()
	out := make([]regionView, len(regions))
	for i, reg := range regions {
		out[i] = regionView{Region: reg, Label: utils.T(locale, reg.Name)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"fallback": bodymap.Fallback, "regions": out})
}

// GET /api/appearance?level=&palette=traffic|faces
func (rt *Router) handleAppearance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	level, err := strconv.ParseFloat(r.URL.Query().Get("level"), 64)
	if err != nil {
		http.Error(w, "level must be a number", http.StatusBadRequest)
		return
	}
	pal, ok := appearance.ByName(r.URL.Query().Get("palette"))
	if !ok {
		http.Error(w, "unknown palette", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"palette": pal.Name(), "state": pal.At(level)})
}

// GET /api/preferences
func (rt *Router) handlePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	prefs, err := rt.prefs.Get(r.Context(), middleware.OwnerFromContext(r.Context()))
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// GET|PUT /api/preferences/variant, PUT /api/preferences/dial_style
func (rt *Router) handlePreferenceScoped(w http.ResponseWriter, r *http.Request) {
	key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/preferences/"), "/")
	owner := middleware.OwnerFromContext(r.Context())
	switch {
	case key == services.PrefVariant && r.Method == http.MethodGet:
		prefs, err := rt.prefs.Get(r.Context(), owner)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"variant": prefs.Variant, "asset": prefs.Variant.AssetPath()})
	case key == services.PrefVariant && r.Method == http.MethodPut:
		var req struct {
			Variant string `json:"variant"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		v, err := rt.prefs.SetVariant(r.Context(), owner, req.Variant)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"variant": v, "asset": v.AssetPath()})
	case key == services.PrefDialStyle && r.Method == http.MethodPut:
		var req struct {
			DialStyle string `json:"dial_style"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st, err := rt.prefs.SetDialStyle(r.Context(), owner, req.DialStyle)
		if err != nil {
			rt.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dial_style": st, "palette": appearance.ForStyle(st).Name()})
	case key == services.PrefVariant || key == services.PrefDialStyle:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}
