package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawane/shiori"
	"github.com/sawane/shiori/pkg/adapters/memory"
	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/session"
	"github.com/sawane/shiori/pkg/state"
)

func testDocument() *scenario.Document {
	return &scenario.Document{
		ID:    "web-story",
		Entry: "intro",
		Scenes: map[string]*scenario.Scene{
			"intro": {ID: "intro", Commands: []scenario.Command{
				scenario.Dialogue{Speaker: "guide", Text: "Pick a door."},
				scenario.ShowChoice{
					Prompt: "Which door?",
					Options: []scenario.ChoiceOption{
						{Text: "Red", Scene: "red"},
						{Text: "Blue", Scene: "blue"},
					},
				},
			}},
			"red":  {ID: "red", Commands: []scenario.Command{scenario.End{}}},
			"blue": {ID: "blue", Commands: []scenario.Command{scenario.End{}}},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(
		memory.NewLoader(testDocument()),
		WithSaves(session.NewManager(memory.NewStore())),
		WithEngineOptions(shiori.WithTextSpeed(0)),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	resp.Body.Close()
	return resp
}

func startSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	var created createSessionResponse
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions", nil, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, "web-story", created.Document)
	return created.SessionID
}

func TestServerHealth(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]string
	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
}

func TestServerSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	var listing map[string][]string
	resp := doJSON(t, http.MethodGet, ts.URL+"/sessions", nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, listing["sessions"], id)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/sessions/"+id, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/sessions/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerAdvanceToChoice(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	var ev state.Event
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: 0.016}, &ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, state.StatusAwaitingAdvance, ev.Status)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Pick a door.", ev.Line.Text)

	resp = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: 0.016, Input: true}, &ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, state.StatusAwaitingChoice, ev.Status)
	require.NotNil(t, ev.Choice)
	require.Len(t, ev.Choice.Options, 2)

	// Out of range index is the client's fault.
	resp = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/choice", choiceRequest{Index: 7}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/choice", choiceRequest{Index: 1}, &ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, state.StatusEnded, ev.Status)
	assert.Equal(t, "blue", ev.Cursor.Scene)
}

func TestServerChoiceWithoutPending(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/choice", choiceRequest{Index: 0}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServerNegativeDT(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: -1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/nope/advance", advanceRequest{DT: 0.016}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerSaveAndRestore(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	var ev state.Event
	doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: 0.016}, &ev)
	require.Equal(t, state.StatusAwaitingAdvance, ev.Status)

	var saved map[string]string
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/save", saveRequest{Slot: "checkpoint"}, &saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "checkpoint", saved["slot"])

	// Play past the save point, then restore.
	doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: 0.016, Input: true}, &ev)
	require.Equal(t, state.StatusAwaitingChoice, ev.Status)

	resp = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/restore", restoreRequest{Slot: "checkpoint"}, &ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, state.StatusAwaitingAdvance, ev.Status)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Pick a door.", ev.Line.Text)

	var saves map[string][]session.SlotInfo
	resp = doJSON(t, http.MethodGet, ts.URL+"/saves", nil, &saves)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, saves["saves"], 1)
	assert.Equal(t, "checkpoint", saves["saves"][0].Slot)

	resp = doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/restore", restoreRequest{Slot: "missing"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerSaveSlotGenerated(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	var saved map[string]string
	resp := doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/save", saveRequest{}, &saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, saved["slot"])
}

func TestServerHistory(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)

	doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: 0.016}, nil)

	var out map[string][]state.HistoryEntry
	resp := doJSON(t, http.MethodGet, ts.URL+"/sessions/"+id+"/history", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out["history"], 1)
	assert.Equal(t, "Pick a door.", out["history"][0].Text)
}

func TestServerMetrics(t *testing.T) {
	ts := newTestServer(t)
	id := startSession(t, ts)
	doJSON(t, http.MethodPost, ts.URL+"/sessions/"+id+"/advance", advanceRequest{DT: 0.016}, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "shiori_sessions_active 1")
	assert.Contains(t, string(body), "shiori_frames_total 1")
}
