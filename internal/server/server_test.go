package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/graph"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/pipeline"
	"github.com/matzehuels/topoviz/pkg/selection"
)

type memSource struct{ topologies map[string]graph.Topology }

func (s *memSource) Name() string { return "mem" }

func (s *memSource) Collections(context.Context) ([]string, error) {
	return []string{"fabric"}, nil
}

func (s *memSource) Topology(_ context.Context, c string) (graph.Topology, error) {
	t, ok := s.topologies[c]
	if !ok {
		return graph.Topology{}, errors.New(errors.ErrCodeCollectionNotFound, "collection %q not found", c)
	}
	return t, nil
}

func fabric() graph.Topology {
	return graph.Topology{
		Vertices: map[string]map[string]any{
			"igp_node/r1": {"name": "r1"},
			"igp_node/r2": {"name": "r2"},
			"prefix/p1":   {"prefix": "10.0.0.0", "prefix_len": 24},
		},
		Edges: []map[string]any{
			{"_id": "e1", "_from": "igp_node/r1", "_to": "igp_node/r2", "load": 75},
			{"_id": "e2", "_from": "igp_node/r2", "_to": "prefix/p1"},
		},
	}
}

// pathQuerier finds r1 <-> r2 and nothing involving the prefix.
var pathQuerier = pathquery.QuerierFunc(func(_ context.Context, req pathquery.Request) (*pathquery.Result, error) {
	if req.Source == "prefix/p1" || req.Destination == "prefix/p1" {
		return &pathquery.Result{}, nil
	}
	return &pathquery.Result{
		Found: true,
		Hops:  []pathquery.Hop{{VertexID: req.Source}, {VertexID: req.Destination, EdgeID: "e1"}},
	}, nil
})

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	src := &memSource{topologies: map[string]graph.Topology{"fabric": fabric()}}
	runner := pipeline.NewRunner(src, nil, nil, nil, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "topoviz_test_total", Help: "test"}))

	srv := New(runner, pathQuerier, nil, logger, Options{RunHistory: 5, Gatherer: reg})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Error
}

func createSession(t *testing.T, ts *httptest.Server, mode string) sessionResponse {
	t.Helper()
	resp, data := do(t, http.MethodPost, ts.URL+"/sessions", `{"collection":"fabric","mode":"`+mode+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var sess sessionResponse
	require.NoError(t, json.Unmarshal(data, &sess))
	require.NotEmpty(t, sess.ID)
	return sess
}

func TestServiceEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(data), `"status":"ok"`)

	resp, data = do(t, http.MethodGet, ts.URL+"/version", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(data), "version")

	resp, data = do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(data), "topoviz_test_total")

	resp, data = do(t, http.MethodGet, ts.URL+"/collections", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"collections":["fabric"]}`, string(data))

	resp, data = do(t, http.MethodGet, ts.URL+"/styles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(data), ".critical-load")
}

func TestLayoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, http.MethodGet, ts.URL+"/graphs/fabric/layout?variant=ring", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var l graph.Layout
	require.NoError(t, json.Unmarshal(data, &l))
	require.Equal(t, "fabric", l.Collection)
	require.Len(t, l.Nodes(), 3)
	require.Len(t, l.Edges(), 2)

	resp, data = do(t, http.MethodGet, ts.URL+"/graphs/fabric/layout?format=dot", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	require.Contains(t, string(data), "graph G {")

	tests := []struct {
		name   string
		path   string
		status int
		code   errors.Code
	}{
		{"unknown collection", "/graphs/missing/layout", http.StatusNotFound, errors.ErrCodeCollectionNotFound},
		{"unknown variant", "/graphs/fabric/layout?variant=spiral", http.StatusBadRequest, errors.ErrCodeInvalidVariant},
		{"unknown format", "/graphs/fabric/layout?format=gif", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad scale", "/graphs/fabric/layout?format=png&scale=big", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodGet, ts.URL+tt.path, "")
			require.Equal(t, tt.status, resp.StatusCode, string(data))
			require.Equal(t, tt.code, decodeError(t, data).Code)
		})
	}
}

func TestFreeModeSession(t *testing.T) {
	ts := newTestServer(t)
	sess := createSession(t, ts, "free")
	require.Equal(t, selection.PhaseIdle, sess.State.Phase)
	base := ts.URL + "/sessions/" + sess.ID

	resp, data := do(t, http.MethodPost, base+"/tap", `{"vertex":"igp_node/r1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	resp, data = do(t, http.MethodPost, base+"/tap", `{"vertex":"igp_node/r2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var got sessionResponse
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, selection.PhaseDestinationSelected, got.State.Phase)

	resp, data = do(t, http.MethodPost, base+"/constraint", `{"constraint":"load"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, selection.PhasePathHighlighted, got.State.Phase)
	require.Equal(t, pathquery.Load, got.State.Constraint)
	require.NotEmpty(t, got.Marks.EdgeClasses("e1"))

	resp, data = do(t, http.MethodGet, base+"/layout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.Contains(t, string(data), "selected")

	// A background tap resets the selection.
	resp, data = do(t, http.MethodPost, base+"/tap", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, selection.PhaseIdle, got.State.Phase)
}

func TestConstraintWithoutPath(t *testing.T) {
	ts := newTestServer(t)
	sess := createSession(t, ts, "")
	base := ts.URL + "/sessions/" + sess.ID

	do(t, http.MethodPost, base+"/tap", `{"vertex":"igp_node/r1"}`)
	do(t, http.MethodPost, base+"/tap", `{"vertex":"prefix/p1"}`)

	resp, data := do(t, http.MethodPost, base+"/constraint", `{"constraint":"latency"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var got sessionResponse
	require.NoError(t, json.Unmarshal(data, &got))
	require.True(t, got.State.NoPath)
	require.Equal(t, errors.ErrCodePathNotFound, got.State.ErrorCode)
	require.Equal(t, selection.PhaseDestinationSelected, got.State.Phase)

	resp, data = do(t, http.MethodPost, base+"/constraint", `{"constraint":"fastest"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, errors.ErrCodeInvalidConstraint, decodeError(t, data).Code)
}

func TestWorkloadSession(t *testing.T) {
	ts := newTestServer(t)
	sess := createSession(t, ts, "workload")
	base := ts.URL + "/sessions/" + sess.ID

	resp, data := do(t, http.MethodPost, base+"/compute", "")
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(data))
	require.Equal(t, errors.ErrCodeInvalidState, decodeError(t, data).Code)

	for _, v := range []string{"igp_node/r1", "igp_node/r2", "prefix/p1"} {
		resp, data := do(t, http.MethodPost, base+"/tap", `{"vertex":"`+v+`"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	}

	resp, data = do(t, http.MethodPost, base+"/compute", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var run selection.WorkloadRun
	require.NoError(t, json.Unmarshal(data, &run))
	require.Equal(t, 3, run.Queries())
	require.Len(t, run.Paths, 1)
	require.Len(t, run.Failures, 2)
	require.NotEmpty(t, run.ID)

	resp, data = do(t, http.MethodGet, base+"/runs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs runsResponse
	require.NoError(t, json.Unmarshal(data, &runs))
	require.Len(t, runs.Runs, 1)

	resp, _ = do(t, http.MethodGet, base+"/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = do(t, http.MethodGet, base+"/runs/nope", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, errors.ErrCodeNotFound, decodeError(t, data).Code)
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t)
	sess := createSession(t, ts, "free")
	base := ts.URL + "/sessions/" + sess.ID

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		status int
		code   errors.Code
	}{
		{"missing collection", http.MethodPost, ts.URL + "/sessions", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad mode", http.MethodPost, ts.URL + "/sessions", `{"collection":"fabric","mode":"chaos"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, ts.URL + "/sessions", `{"collection":"fabric","extra":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown collection", http.MethodPost, ts.URL + "/sessions", `{"collection":"missing"}`, http.StatusNotFound, errors.ErrCodeCollectionNotFound},
		{"unknown session", http.MethodGet, ts.URL + "/sessions/nope", "", http.StatusNotFound, errors.ErrCodeSessionNotFound},
		{"unknown vertex", http.MethodPost, base + "/tap", `{"vertex":"igp_node/r9"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"constraint too early", http.MethodPost, base + "/constraint", `{"constraint":"shortest"}`, http.StatusConflict, errors.ErrCodeInvalidState},
		{"missing mode", http.MethodPost, base + "/mode", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, tt.method, tt.url, tt.body)
			require.Equal(t, tt.status, resp.StatusCode, string(data))
			require.Equal(t, tt.code, decodeError(t, data).Code)
		})
	}
}

func TestSessionModeAndDelete(t *testing.T) {
	ts := newTestServer(t)
	sess := createSession(t, ts, "free")
	base := ts.URL + "/sessions/" + sess.ID

	resp, data := do(t, http.MethodPost, base+"/mode", `{"mode":"sequential"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var got sessionResponse
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, selection.ModeSequential, got.State.Mode)
	require.Equal(t, selection.PhaseChainEmpty, got.State.Phase)

	resp, _ = do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, data = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, errors.ErrCodeSessionNotFound, decodeError(t, data).Code)

	resp, _ = do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeInvalidVariant:     http.StatusBadRequest,
		errors.ErrCodeSessionNotFound:    http.StatusNotFound,
		errors.ErrCodeStale:              http.StatusConflict,
		errors.ErrCodeDataShape:          http.StatusUnprocessableEntity,
		errors.ErrCodePathQuery:          http.StatusBadGateway,
		errors.ErrCodeTimeout:            http.StatusGatewayTimeout,
		errors.ErrCodeUnsupported:        http.StatusNotImplemented,
		errors.ErrCodeInternal:           http.StatusInternalServerError,
		errors.ErrCodeLayoutUnresolvable: http.StatusUnprocessableEntity,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}
