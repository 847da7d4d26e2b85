package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/querydsl/internal/seed"
	"github.com/alfredjeanlab/querydsl/internal/store/sqlstore"
)

// recordingPublisher keeps every published topic in order.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// fourMembers is member1..member4 aged 10..40, two per team.
func fourMembers() *seed.Fixture {
	return &seed.Fixture{
		Teams: []seed.TeamFixture{{Name: "teamA"}, {Name: "teamB"}},
		Members: []seed.MemberFixture{
			{Username: "member1", Age: 10, Team: "teamA"},
			{Username: "member2", Age: 20, Team: "teamA"},
			{Username: "member3", Age: 30, Team: "teamB"},
			{Username: "member4", Age: 40, Team: "teamB"},
		},
	}
}

type testEnv struct {
	srv     *MemberServer
	store   *sqlstore.SQLStore
	pub     *recordingPublisher
	handler http.Handler
}

// newTestServer returns a server over an in-memory SQLite store seeded with
// fourMembers.
func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	st, err := sqlstore.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = seed.Apply(context.Background(), st, fourMembers())
	require.NoError(t, err)

	pub := &recordingPublisher{}
	srv := NewMemberServer(st, pub)
	return &testEnv{srv: srv, store: st, pub: pub, handler: srv.NewHTTPHandler("")}
}

// doJSON performs an HTTP request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
