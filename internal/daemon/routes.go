package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/nestegg/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Route binds one method and path to a handler with optional per-route
// middlewares, applied outermost first.
type Route struct {
	Path        string
	Method      string
	Handler     http.Handler
	Middlewares []alice.Constructor
}

// Router is an httprouter configured from a list of routes.
type Router struct {
	router *httprouter.Router
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRoutes registers routes on the router.
func WithRoutes(routes ...Route) RouterOption {
	return func(r *Router) {
		r.AddRoutes(routes...)
	}
}

// NewRouter builds a router with JSON 404 and 405 responses.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{router: httprouter.New()}
	r.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// AddRoutes registers routes, wrapping each in its own middlewares.
func (r *Router) AddRoutes(routes ...Route) {
	for _, route := range routes {
		h := alice.New(route.Middlewares...).Then(route.Handler)
		r.router.Handler(route.Method, route.Path, h)
	}
}

// Handler returns the daemon's HTTP API.
func (s *Service) Handler() http.Handler {
	requireState := alice.Constructor(s.requireSnapshot)

	rt := NewRouter(WithRoutes(
		Route{Path: "/healthz", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleHealth)},
		Route{Path: "/v1/status", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleStatus)},
		Route{Path: "/v1/snapshot", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleSnapshot), Middlewares: []alice.Constructor{requireState}},
		Route{Path: "/v1/ladder", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleLadder), Middlewares: []alice.Constructor{requireState}},
		Route{Path: "/v1/projection/:level", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleProjection), Middlewares: []alice.Constructor{requireState}},
		Route{Path: "/v1/events", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleEvents)},
		Route{Path: "/v1/stream", Method: http.MethodGet, Handler: http.HandlerFunc(s.handleStream)},
		Route{Path: "/v1/refresh", Method: http.MethodPost, Handler: http.HandlerFunc(s.handleRefresh)},
	))

	return alice.New(loggingMiddleware, panicMiddleware).Then(rt)
}

// requireSnapshot answers 503 until the first recompute has succeeded.
func (s *Service) requireSnapshot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := s.current(); !ok {
			writeError(w, http.StatusServiceUnavailable, "no snapshot computed yet")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	_, snap, _ := s.current()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleLadder(w http.ResponseWriter, _ *http.Request) {
	_, snap, _ := s.current()
	writeJSON(w, http.StatusOK, snap.Levels)
}

func (s *Service) handleProjection(w http.ResponseWriter, r *http.Request) {
	levelID := httprouter.ParamsFromContext(r.Context()).ByName("level")
	st, snap, _ := s.current()

	_, rows, err := s.ws.Project(r.Context(), st, levelID)
	if errors.Is(err, model.ErrUnknownLevel) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown level %q", levelID))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := Projection{Years: yearViews(rows, queryBool(r, "months"))}
	for _, lv := range snap.Levels {
		if lv.ID == levelID {
			resp.Level = lv
			break
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an event id")
			return
		}
		since = n
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > since {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	if _, snap, ok := s.current(); ok {
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: snap})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

// handleRefresh recomputes now, dropping cached projections first.
// ?fx=1 also refetches the exchange rate.
func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.ws.Cache != nil {
		if err := s.ws.Cache.Invalidate(r.Context()); err != nil {
			logrus.WithError(err).Warn("projection cache invalidation failed")
		}
	}
	if err := s.Recompute(r.Context(), queryBool(r, "fx")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_, snap, _ := s.current()
	writeJSON(w, http.StatusOK, snap)
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
