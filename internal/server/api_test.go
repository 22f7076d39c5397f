package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sound-server/internal/dispatch"
	"sound-server/internal/library"
	"sound-server/internal/log"
	playermocks "sound-server/internal/player/mocks"
	"sound-server/internal/server/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T, dir string) (*gin.Engine, *mocks.MockDispatcher) {
	t.Helper()
	dispatcher := mocks.NewMockDispatcher(gomock.NewController(t))
	api := NewAPI(library.New(dir), dispatcher, log.Discard())
	return SetupRouter(api, log.Discard()), dispatcher
}

func soundsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644))
	}
	return dir
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeOutcome(t *testing.T, w *httptest.ResponseRecorder) Outcome {
	t.Helper()
	var out Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	w := do(router, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthEndpoint_ReportsDispatcherState(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := playermocks.NewMockAudioPlayer(gomock.NewController(t))
	p.EXPECT().Name().Return("mock").AnyTimes()
	p.EXPECT().Play(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) error {
		close(started)
		<-release
		return nil
	}).Times(1)

	d := dispatch.New(p, log.Discard())
	router := SetupRouter(NewAPI(library.New(soundsDir(t, "bell.wav")), d, log.Discard()), log.Discard())

	health := func() HealthResponse {
		w := do(router, "GET", "/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	assert.Equal(t, HealthResponse{Status: "ok", Backend: "mock", InFlight: 0}, health())

	played := make(chan int, 1)
	go func() {
		played <- do(router, "POST", "/play", `{"sound":"bell.wav"}`).Code
	}()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("play was not dispatched")
	}
	assert.Equal(t, int64(1), health().InFlight)

	close(release)
	assert.Equal(t, http.StatusOK, <-played)
	assert.Equal(t, HealthResponse{Status: "ok", Backend: "mock", InFlight: 0}, health())
}

func TestListSounds(t *testing.T) {
	dir := soundsDir(t, "bell.wav", "chime.mp3")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	router, _ := setupTestRouter(t, dir)

	w := do(router, "GET", "/sounds", "")
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.ElementsMatch(t, []string{"bell.wav", "chime.mp3"}, names)
}

func TestListSounds_EmptyDirectory(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	w := do(router, "GET", "/sounds", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListSounds_UnreadableDirectory(t *testing.T) {
	router, _ := setupTestRouter(t, filepath.Join(t.TempDir(), "missing"))

	w := do(router, "GET", "/sounds", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	out := decodeOutcome(t, w)
	assert.False(t, out.Success)
	assert.Equal(t, "Unable to read sounds directory", out.Error)
}

func TestPlayEndpoint_ValidRequest(t *testing.T) {
	dir := soundsDir(t, "bell.wav", "chime.mp3")
	router, dispatcher := setupTestRouter(t, dir)
	dispatcher.EXPECT().Play(gomock.Any(), filepath.Join(dir, "bell.wav")).Return(nil).Times(1)

	w := do(router, "POST", "/play", `{"sound": "bell.wav"}`)
	require.Equal(t, http.StatusOK, w.Code)

	out := decodeOutcome(t, w)
	assert.True(t, out.Success)
	assert.Equal(t, "Successfully played sound: bell.wav", out.Message)
	assert.Empty(t, out.Error)
}

func TestPlayEndpoint_MissingSound(t *testing.T) {
	// No expectations: any dispatch fails the test.
	router, _ := setupTestRouter(t, soundsDir(t, "bell.wav"))

	w := do(router, "POST", "/play", `{"sound": "missing.wav"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	out := decodeOutcome(t, w)
	assert.False(t, out.Success)
	assert.Equal(t, "Sound file 'missing.wav' not found", out.Error)
	assert.Empty(t, out.Message)
}

func TestPlayEndpoint_PathTraversal(t *testing.T) {
	root := t.TempDir()
	sounds := filepath.Join(root, "sounds")
	require.NoError(t, os.Mkdir(sounds, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.wav"), []byte("RIFF"), 0o644))
	router, _ := setupTestRouter(t, sounds)

	for _, name := range []string{"../secret.wav", "..", "/etc/passwd", `..\secret.wav`} {
		w := do(router, "POST", "/play", `{"sound": `+mustJSON(t, name)+`}`)
		assert.Equal(t, http.StatusNotFound, w.Code, name)
	}
}

func TestPlayEndpoint_DirectoryIsNotASound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "bell.wav"), 0o755))
	router, _ := setupTestRouter(t, dir)

	w := do(router, "POST", "/play", `{"sound": "bell.wav"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayEndpoint_DispatchFailure(t *testing.T) {
	router, dispatcher := setupTestRouter(t, soundsDir(t, "bell.wav"))
	dispatcher.EXPECT().Play(gomock.Any(), gomock.Any()).Return(errors.New("no audio device"))

	w := do(router, "POST", "/play", `{"sound": "bell.wav"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	out := decodeOutcome(t, w)
	assert.False(t, out.Success)
	assert.Equal(t, "Failed to play sound: bell.wav", out.Error)
	assert.NotContains(t, w.Body.String(), "no audio device", "cause is only logged locally")
}

func TestPlayEndpoint_InvalidBody(t *testing.T) {
	router, _ := setupTestRouter(t, soundsDir(t, "bell.wav"))

	for _, body := range []string{`{invalid json}`, `{}`, `{"sound": ""}`} {
		w := do(router, "POST", "/play", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		out := decodeOutcome(t, w)
		assert.False(t, out.Success)
		assert.True(t, strings.HasPrefix(out.Error, "invalid request"), out.Error)
	}
}

func TestPlayDefault_EmptyDirectory(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	w := do(router, "GET", "/play", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No sound files found", decodeOutcome(t, w).Error)
}

func TestPlayDefault_UnreadableDirectory(t *testing.T) {
	router, _ := setupTestRouter(t, filepath.Join(t.TempDir(), "missing"))

	w := do(router, "GET", "/play", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Unable to read sounds directory", decodeOutcome(t, w).Error)
}

func TestPlayDefault_PlaysAMemberOfTheDirectory(t *testing.T) {
	dir := soundsDir(t, "bell.wav", "chime.mp3")
	router, dispatcher := setupTestRouter(t, dir)

	var played string
	dispatcher.EXPECT().Play(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, path string) error {
		played = path
		return nil
	}).Times(1)

	w := do(router, "GET", "/play", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, []string{filepath.Join(dir, "bell.wav"), filepath.Join(dir, "chime.mp3")}, played)
	assert.Equal(t, "Successfully played sound: "+filepath.Base(played), decodeOutcome(t, w).Message)
}

func TestCORS_Preflight(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	req, _ := http.NewRequest("OPTIONS", "/play", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_OnRegularResponses(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	w := do(router, "GET", "/sounds", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	w := do(router, "GET", "/health", "")
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	incoming := uuid.NewString()
	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get("X-Request-ID"))

	req, _ = http.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "not a uuid\r\n")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid\r\n", w.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	router, _ := setupTestRouter(t, t.TempDir())

	w := do(router, "GET", "/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeOutcome(t, w).Success)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
