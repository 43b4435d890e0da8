package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/game"
	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/leaderboard"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler http.Handler
	session *game.SessionManager
	repo    *repositories.MemoryRepository
}

func newTestEnv(t *testing.T, allowOrigin string) *testEnv {
	t.Helper()
	repo := repositories.NewMemoryRepository()
	updater := leaderboard.NewUpdater(leaderboard.NewUpdaterOptions{UserStore: repo, RecordStore: repo})
	session := game.NewSessionManager(game.NewSessionManagerOptions{
		UserStore:       repo,
		TranscriptStore: repo,
		Leaderboard:     updater,
	})
	return &testEnv{
		handler: NewRouter(NewAPIServerOptions{
			AllowOrigin: allowOrigin,
			PublicURL:   "https://yahtzee.example.com",
			Session:     session,
			UserStore:   repo,
			HallOfFame:  updater,
		}),
		session: session,
		repo:    repo,
	}
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t, "*")

	rec := env.do(http.MethodGet, "/user?username=alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, models.User{Username: "alice"}, user)

	require.NoError(t, env.repo.UpdateHighScore(context.Background(), "alice", 210))
	rec = env.do(http.MethodGet, "/user?username=alice")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, 210, user.HighScore)
}

func TestGetUser_badRequest(t *testing.T) {
	env := newTestEnv(t, "*")

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing", target: "/user"},
		{name: "blank", target: "/user?username=%20%20"},
		{name: "too long", target: "/user?username=" + string(bytes.Repeat([]byte("a"), 33))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, tt.target).Code)
		})
	}
}

func TestGetHall(t *testing.T) {
	env := newTestEnv(t, "*")

	rec := env.do(http.MethodGet, "/hall")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.NoError(t, env.repo.SetRecords(context.Background(), leaderboard.HallOfFameKey, []models.Record{
		{Player: "bob", Score: 250},
		{Player: "alice", Score: 120},
	}))
	rec = env.do(http.MethodGet, "/hall")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"player":"bob","score":250},{"player":"alice","score":120}]`, rec.Body.String())
}

func TestStateAndRefresh(t *testing.T) {
	env := newTestEnv(t, "*")
	ctx := context.Background()
	require.NoError(t, env.session.Join(ctx, "alice"))
	require.NoError(t, env.session.Start(ctx))

	rec := env.do(http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap types.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, []string{"alice"}, snap.Roster)
	assert.Equal(t, "alice", snap.ActivePlayer)

	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodGet, "/refresh").Code)

	rec = env.do(http.MethodPost, "/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Roster)
	assert.False(t, snap.HasStarted)
	assert.Empty(t, env.session.Snapshot().Roster)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, "https://play.example.com")

	rec := env.do(http.MethodOptions, "/refresh")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://play.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, env.session.Snapshot().Roster)
}

func TestQR(t *testing.T) {
	env := newTestEnv(t, "*")

	rec := env.do(http.MethodGet, "/qr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}

func TestHealthzAndVersion(t *testing.T) {
	env := newTestEnv(t, "*")

	rec := env.do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = env.do(http.MethodGet, "/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"dev"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/nope").Code)
}

func TestAPIServer_startReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()

	server := NewAPIServer(NewAPIServerOptions{
		Port: l.Addr().(*net.TCPAddr).Port,
	})
	errChan := make(chan error, 1)
	go func() { errChan <- server.Start() }()

	select {
	case err := <-errChan:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server started on a port that is already in use")
	}
}

func TestAPIServer_startReturnsNilAfterStop(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	require.NoError(t, l.Close())

	server := NewAPIServer(NewAPIServerOptions{Port: addr.Port})
	errChan := make(chan error, 1)
	go func() { errChan <- server.Start() }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", addr.Port))
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, server.Stop(context.Background()))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not return after stop")
	}
}
