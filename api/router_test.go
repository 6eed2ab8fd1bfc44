package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "uptime-config/services/v1"
)

type recordingStore struct {
	v1.ConfigStore
	puts int
}

func (s *recordingStore) Put(ctx context.Context, blob []byte) error {
	s.puts++
	return s.ConfigStore.Put(ctx, blob)
}

type conflictMirror struct {
	calls int
}

func (m *conflictMirror) ReadCurrent(ctx context.Context, creds v1.MirrorCredentials, path string) (v1.MirrorFile, error) {
	m.calls++
	return v1.MirrorFile{Content: []byte("old"), Token: "sha-old"}, nil
}

func (m *conflictMirror) WriteIfMatch(ctx context.Context, creds v1.MirrorCredentials, path string, content []byte, expectedToken, message string) error {
	m.calls++
	return &v1.MirrorError{Op: "write", Kind: v1.ErrMirrorConflict, StatusCode: http.StatusConflict}
}

func (m *conflictMirror) Create(ctx context.Context, creds v1.MirrorCredentials, path string, content []byte, message string) error {
	m.calls++
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *recordingStore, *conflictMirror) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := &recordingStore{ConfigStore: v1.NewMemoryStore()}
	mirror := &conflictMirror{}
	coordinator := v1.NewCoordinator(store, mirror, v1.MirrorOptions{Path: "uptime.config.ts", CommitMessage: "Update uptime configuration"}, nil)
	return NewRouter(Dependencies{Syncer: coordinator, Store: store}), store, mirror
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

const scenarioDocument = `{"pageSettings":{"title":"S"},"monitorSettings":{"monitors":[{"id":"m1","method":"HTTP","target":"https://x"}]}}`

func TestGetOnEmptyStore(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rr := request(r, http.MethodGet, "/api/config", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Config not found"}`, rr.Body.String())
}

func TestPostThenGetReturnsDocument(t *testing.T) {
	r, _, mirror := newTestRouter(t)

	rr := request(r, http.MethodPost, "/api/config", scenarioDocument)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Zero(t, mirror.calls)

	rr = request(r, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, scenarioDocument, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestPostThenGetKeepsEveryMember(t *testing.T) {
	r, _, _ := newTestRouter(t)
	doc := `{"pageSettings":{"links":[{"link":"/a"}],"group":{}},"monitorSettings":{"monitors":[` +
		`{"id":"m1","method":"HTTP","target":"https://x","expectedCodes":[]}],"callbacks":{}}}`

	rr := request(r, http.MethodPost, "/api/config", doc)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = request(r, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, doc, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), `"title"`)
	assert.NotContains(t, rr.Body.String(), `"label"`)
}

func TestPostWithMirrorConflictStillSucceeds(t *testing.T) {
	r, store, mirror := newTestRouter(t)
	body := strings.TrimSuffix(scenarioDocument, "}") + `,"mirrorToken":"tok","mirrorOwner":"acme","mirrorRepo":"status"}`

	rr := request(r, http.MethodPost, "/api/config", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":true`)
	assert.Equal(t, 2, mirror.calls)
	assert.Equal(t, 1, store.puts)

	rr = request(r, http.MethodGet, "/api/config", "")
	assert.JSONEq(t, scenarioDocument, rr.Body.String())
}

func TestPostDuplicateIDsTouchesNoStore(t *testing.T) {
	r, store, mirror := newTestRouter(t)
	body := `{"pageSettings":{"title":"S"},"monitorSettings":{"monitors":[` +
		`{"id":"dup","method":"GET","target":"https://a"},{"id":"dup","method":"GET","target":"https://b"}]},` +
		`"mirrorToken":"tok","mirrorOwner":"acme","mirrorRepo":"status"}`

	rr := request(r, http.MethodPost, "/api/config", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, store.puts)
	assert.Zero(t, mirror.calls)
}

func TestUnsupportedVerb(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rr := request(r, http.MethodPut, "/api/config", scenarioDocument)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealthRoute(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rr := request(r, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
