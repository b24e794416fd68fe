package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJourney = `
name: licence
steps:
  /start:
    entryPoint: true
    noPost: true
    title: Before you begin
    next: /age
  /age:
    fields: [age]
    next:
      - field: age
        op: "<"
        value: 18
        next: /not-old-enough
      - /details
  /not-old-enough: {}
  /details:
    fields: [name]
    next: /done
  /done: {}
fields:
  age:
    validate: [required, numeric]
    invalidates: [name]
  name:
    validate: [required]
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	spec, err := arbor.ParseSpec([]byte(testJourney))
	require.NoError(t, err)
	wizard, err := arbor.New(spec)
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(NewHandler(wizard, sessions))
	t.Cleanup(srv.Close)
	return srv
}

func createJourney(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/journeys", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["id"])
	return body["id"]
}

func getStep(t *testing.T, srv *httptest.Server, journeyID, step string) (*http.Response, stepResponse) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/journeys/" + journeyID + "/steps" + step)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body stepResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func postStep(t *testing.T, srv *httptest.Server, journeyID, step string, values map[string]any) (*http.Response, submitResponse) {
	t.Helper()
	payload, err := json.Marshal(values)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/journeys/"+journeyID+"/steps"+step, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body submitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestCreateJourney(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)
	assert.NotEmpty(t, id)
}

func TestGetEntryStep(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	resp, body := getStep(t, srv, id, "/start")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Allowed)
	assert.Equal(t, "/start", body.Step)
	assert.Equal(t, "Before you begin", body.Title)
}

func TestGetStepAheadOfJourney(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	resp, body := getStep(t, srv, id, "/details")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "empty history means missing prereq")
	assert.False(t, body.Allowed)
	assert.Equal(t, "MISSING_PREREQ", body.Code)
}

func TestWalkJourney(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	// Rendering the link-only start step completes it.
	resp, _ := getStep(t, srv, id, "/start")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, submit := postStep(t, srv, id, "/age", map[string]any{"age": "30"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/details", submit.Next)

	resp, submit = postStep(t, srv, id, "/details", map[string]any{"name": "Ada"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/done", submit.Next)

	// Stored values come back when re-rendering a completed step.
	resp, step := getStep(t, srv, id, "/details")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ada", step.Values["name"])
}

func TestSubmitJSONNumber(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	_, _ = getStep(t, srv, id, "/start")

	// JSON bodies carry numbers, not strings; the numeric rule must accept
	// the decoded float64.
	resp, submit := postStep(t, srv, id, "/age", map[string]any{"age": 34})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, submit.Errors)
	assert.Equal(t, "/details", submit.Next)
}

func TestSubmitValidationFailure(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	_, _ = getStep(t, srv, id, "/start")

	resp, submit := postStep(t, srv, id, "/age", map[string]any{"age": "not-a-number"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, submit.Errors, "age")
	assert.Equal(t, "numeric", submit.Errors["age"].Type)
}

func TestSubmitDeniedStepConflicts(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	_, _ = getStep(t, srv, id, "/start")
	_, submitted := postStep(t, srv, id, "/age", map[string]any{"age": "30"})
	require.Equal(t, "/details", submitted.Next)

	resp, err := http.Post(srv.URL+"/journeys/"+id+"/steps/done", "application/json", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body stepResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_ALLOWED", body.Code)
	assert.Equal(t, "/age", body.Fallback)
}

func TestUnknownJourney(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/journeys/missing/steps/start")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownStep(t *testing.T) {
	srv := newTestServer(t)
	id := createJourney(t, srv)

	resp, err := http.Get(srv.URL + "/journeys/" + id + "/steps/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGraphEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, buf.String(), "graph TD")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateJourneyCountsStart(t *testing.T) {
	spec, err := arbor.ParseSpec([]byte(testJourney))
	require.NoError(t, err)
	wizard, err := arbor.New(spec)
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	sessions := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(NewHandler(wizard, sessions, WithMetrics(metrics)))
	t.Cleanup(srv.Close)

	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.JourneysStarted))
	createJourney(t, srv)
	createJourney(t, srv)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.JourneysStarted))
}
