package matrix

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHomeserver covers the four calls a Send against a not-yet-cached room
// alias makes: login, a 404 directory lookup, createRoom, and send.
func fakeHomeserver(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/_matrix/client/r0/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/_matrix/client/r0/directory/room/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/_matrix/client/r0/createRoom", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"room_id": "!newroom:example.org"})
	})
	mux.HandleFunc("/_matrix/client/r0/rooms/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"event_id": "$evt1"})
	})

	return httptest.NewServer(mux)
}

func TestSendCreatesRoomWhenAliasUnresolved(t *testing.T) {
	srv := fakeHomeserver(t)
	defer srv.Close()

	cache, err := LoadRoomCache(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	client := New(Config{Host: srv.URL, User: "bot", Password: "secret"}, cache, log.New(io.Discard, "", 0))

	err = client.Send(context.Background(), "alerts", "hello room")
	require.NoError(t, err)

	roomID, ok := cache.Lookup("alerts")
	require.True(t, ok)
	assert.Equal(t, "!newroom:example.org", roomID)
}

func TestSendUsesCachedRoomWithoutDirectoryLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/_matrix/client/r0/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-456"})
	})
	mux.HandleFunc("/_matrix/client/r0/directory/room/", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("directory lookup must be skipped when the alias is cached")
	})
	mux.HandleFunc("/_matrix/client/r0/rooms/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"event_id": "$evt2"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache, err := LoadRoomCache(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	require.NoError(t, cache.Store("alerts", "!cached:example.org"))

	client := New(Config{Host: srv.URL, User: "bot", Password: "secret"}, cache, log.New(io.Discard, "", 0))
	require.NoError(t, client.Send(context.Background(), "alerts", "hello again"))
}

func TestConfigIDIsStableAndContentAddressed(t *testing.T) {
	a := Config{Host: "https://matrix.example.org", User: "bot", Password: "secret"}
	b := Config{Host: "https://matrix.example.org", User: "bot", Password: "secret"}
	c := Config{Host: "https://matrix.example.org", User: "bot", Password: "other"}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}
