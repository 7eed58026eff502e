package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nedpals/mfulc/nfc"
	"github.com/nedpals/mfulc/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{Logger: log.New(io.Discard, "", 0)})
	s.startDispatch()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hello WebsocketMessage
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, WSMessageTypeHello, hello.Type)
	return conn
}

func sampleOutcome() session.Outcome {
	report := session.TransferReport{Pages: []session.PageResult{
		{Index: 0, Status: session.StatusSkipped},
		{Index: 4, Status: session.StatusOK},
		{Index: 5, Status: session.StatusFailed, Err: errors.New("locked")},
	}}
	return session.Outcome{
		ID:            "7d444840-9dc0-11d1-b245-5ffdce74fad2",
		Time:          time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Action:        session.ActionWrite,
		Found:         true,
		Identity:      nfc.TagIdentity{UID: "04a1b2c3d4e5f6", Kind: nfc.KindUltralightC, Type: "MF Ultralight C"},
		Authenticated: true,
		Report:        &report,
	}
}

func TestNewSessionEvent(t *testing.T) {
	ev := NewSessionEvent(sampleOutcome())
	assert.Equal(t, "04a1b2c3d4e5f6", ev.UID)
	assert.Equal(t, "write", ev.Action)
	assert.Equal(t, 1, ev.Pages)
	assert.Equal(t, 1, ev.Skipped)
	assert.Equal(t, 1, ev.Failed)
	assert.Nil(t, ev.Error)

	o := sampleOutcome()
	o.Err = errors.New("could not open file")
	ev = NewSessionEvent(o)
	require.NotNil(t, ev.Error)
	assert.Equal(t, "could not open file", *ev.Error)
}

func TestPublishBroadcastsToClients(t *testing.T) {
	s, ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)

	s.Publish(sampleOutcome())

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type    string       `json:"type"`
			Payload SessionEvent `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, WSMessageTypeSession, msg.Type)
		assert.Equal(t, "7d444840-9dc0-11d1-b245-5ffdce74fad2", msg.Payload.ID)
		assert.Equal(t, "MF Ultralight C", msg.Payload.Type)
		assert.True(t, msg.Payload.Authenticated)
		assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), msg.Payload.Time.UTC())
		assert.Contains(t, string(raw), `"error":null`)
	}
}

func TestPublishDoesNotBlockWithoutDispatcher(t *testing.T) {
	s := New(Config{Logger: log.New(io.Discard, "", 0)})
	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBuffer*2; i++ {
			s.Publish(sampleOutcome())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked with a full queue")
	}
}

func TestHealthCheck(t *testing.T) {
	_, ts := newTestServer(t)
	dial(t, ts)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, CORSAllowOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["clients"])

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/health", nil)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestStartAndStop(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, s.Start())
	require.NotNil(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "event feed")

	s.Stop()
	_, err = http.Get("http://" + s.Addr().String() + "/")
	assert.Error(t, err)
}
