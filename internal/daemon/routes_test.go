package daemon

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_BeforeFirstRecompute(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := serve(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	for _, path := range []string{"/v1/snapshot", "/v1/ladder", "/v1/projection/stable"} {
		rec = serve(t, h, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "no snapshot computed yet")
	}

	rec = serve(t, h, http.MethodGet, "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "EGP", st.PlanCurrency)
	assert.Zero(t, st.PollCount)
}

func TestHandler_SnapshotAndLadder(t *testing.T) {
	s, _ := newTestService(t)
	require.NoError(t, s.Recompute(context.Background(), false))
	h := s.Handler()

	rec := serve(t, h, http.MethodGet, "/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "cushion", snap.CurrentLevel)
	assert.Equal(t, "stable", snap.NextLevel)
	assert.True(t, snap.TotalSavings.Equal(dec("310000")))
	assert.Equal(t, "2026-10-16", snap.Today)

	rec = serve(t, h, http.MethodGet, "/v1/ladder")
	require.Equal(t, http.StatusOK, rec.Code)
	var levels []Level
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &levels))
	require.Len(t, levels, 5)
	assert.Equal(t, "starter", levels[0].ID)
	assert.Equal(t, "reached", levels[0].Arrival.Text)
}

func TestHandler_Projection(t *testing.T) {
	s, _ := newTestService(t)
	require.NoError(t, s.Recompute(context.Background(), false))
	h := s.Handler()

	rec := serve(t, h, http.MethodGet, "/v1/projection/stable")
	require.Equal(t, http.StatusOK, rec.Code)
	var p Projection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "stable", p.Level.ID)
	require.NotEmpty(t, p.Years)
	assert.Equal(t, 2026, p.Years[0].Year)
	assert.Empty(t, p.Years[0].Months)

	rec = serve(t, h, http.MethodGet, "/v1/projection/stable?months=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.NotEmpty(t, p.Years[0].Months)

	rec = serve(t, h, http.MethodGet, "/v1/projection/moon")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `unknown level \"moon\"`)
}

func TestHandler_EventsAndRefresh(t *testing.T) {
	s, src := newTestService(t)
	require.NoError(t, s.Recompute(context.Background(), false))
	h := s.Handler()

	src.setBalance("25000")
	rec := serve(t, h, http.MethodPost, "/v1/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.TotalSavings.Equal(dec("325000")))

	rec = serve(t, h, http.MethodGet, "/v1/events")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, EventSnapshot, events[0].Type)
	assert.Equal(t, EventPlanDelta, events[1].Type)

	rec = serve(t, h, http.MethodGet, "/v1/events?since=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].ID)

	rec = serve(t, h, http.MethodGet, "/v1/events?since=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RoutingErrors(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := serve(t, h, http.MethodGet, "/v2/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")

	rec = serve(t, h, http.MethodGet, "/v1/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPanicMiddleware(t *testing.T) {
	h := panicMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := serve(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestHandler_Stream(t *testing.T) {
	s, _ := newTestService(t)
	require.NoError(t, s.Recompute(context.Background(), false))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: snapshot", strings.TrimSpace(line))
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: {"), line)
	assert.Contains(t, line, `"current_level":"cushion"`)
}
