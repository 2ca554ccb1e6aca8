package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGatewayServer upgrades the connection, records the initiation
// frame, replays a scripted set of frames, and closes.
func fakeGatewayServer(t *testing.T, frames []string, initiation chan<- map[string]any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var init map[string]any
		require.NoError(t, conn.ReadJSON(&init))
		initiation <- init

		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func collectEvents(t *testing.T, live LiveSession) []TranscriptEvent {
	t.Helper()
	var events []TranscriptEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event, ok := <-live.Events():
			if !ok {
				return events
			}
			events = append(events, event)
		case <-timeout:
			t.Fatal("event stream did not close in time")
		}
	}
}

func TestOpenSession_SendsInitiationWithOverrides(t *testing.T) {
	t.Parallel()

	initiation := make(chan map[string]any, 1)
	srv := fakeGatewayServer(t, nil, initiation)
	defer srv.Close()

	client := NewClient("key-1", "agent-1")
	overrides := &Overrides{
		Prompt:       "You are Luna.",
		FirstMessage: "Hey Sam!",
		VoiceID:      "voice-123",
	}
	metadata := map[string]string{"user_id": "u-1"}

	live, err := client.OpenSession(context.Background(), wsURL(srv), overrides, metadata)
	require.NoError(t, err)
	defer live.Close()

	init := <-initiation
	assert.Equal(t, "conversation_initiation_client_data", init["type"])

	raw, err := json.Marshal(init)
	require.NoError(t, err)
	var parsed initiationMessage
	require.NoError(t, json.Unmarshal(raw, &parsed))

	require.NotNil(t, parsed.ConfigOverride)
	require.NotNil(t, parsed.ConfigOverride.Agent)
	require.NotNil(t, parsed.ConfigOverride.Agent.Prompt)
	assert.Equal(t, "You are Luna.", parsed.ConfigOverride.Agent.Prompt.Prompt)
	assert.Equal(t, "Hey Sam!", parsed.ConfigOverride.Agent.FirstMessage)
	require.NotNil(t, parsed.ConfigOverride.TTS)
	assert.Equal(t, "voice-123", parsed.ConfigOverride.TTS.VoiceID)
	assert.Equal(t, "u-1", parsed.DynamicVariables["user_id"])

	collectEvents(t, live)
}

func TestOpenSession_AnonymousOmitsOverrides(t *testing.T) {
	t.Parallel()

	initiation := make(chan map[string]any, 1)
	srv := fakeGatewayServer(t, nil, initiation)
	defer srv.Close()

	client := NewClient("key-1", "agent-1")
	live, err := client.OpenSession(context.Background(), wsURL(srv), nil, nil)
	require.NoError(t, err)
	defer live.Close()

	init := <-initiation
	assert.Equal(t, "conversation_initiation_client_data", init["type"])
	_, hasOverride := init["conversation_config_override"]
	assert.False(t, hasOverride)

	collectEvents(t, live)
}

func TestOpenSession_ForwardsTranscriptAndIgnoresOtherFrames(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"user_transcript","user_transcription_event":{"user_transcript":"I love pizza"}}`,
		`{"type":"audio","audio_event":{"audio_base_64":"AAAA"}}`,
		`{"type":"agent_response","agent_response_event":{"agent_response":"Pizza is great!"}}`,
	}
	initiation := make(chan map[string]any, 1)
	srv := fakeGatewayServer(t, frames, initiation)
	defer srv.Close()

	client := NewClient("key-1", "agent-1")
	live, err := client.OpenSession(context.Background(), wsURL(srv), nil, nil)
	require.NoError(t, err)
	defer live.Close()
	<-initiation

	events := collectEvents(t, live)
	require.Len(t, events, 2)
	assert.Equal(t, TranscriptEvent{Role: models.RoleUser, Text: "I love pizza"}, events[0])
	assert.Equal(t, TranscriptEvent{Role: models.RoleAI, Text: "Pizza is great!"}, events[1])
}

func TestOpenSession_AnswersPing(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	pong := make(chan pongMessage, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var init map[string]any
		require.NoError(t, conn.ReadJSON(&init))

		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"ping","ping_event":{"event_id":42}}`)))

		var reply pongMessage
		require.NoError(t, conn.ReadJSON(&reply))
		pong <- reply

		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	client := NewClient("key-1", "agent-1")
	live, err := client.OpenSession(context.Background(), wsURL(srv), nil, nil)
	require.NoError(t, err)
	defer live.Close()

	select {
	case reply := <-pong:
		assert.Equal(t, pongMessage{Type: "pong", EventID: 42}, reply)
	case <-time.After(2 * time.Second):
		t.Fatal("no pong received")
	}

	collectEvents(t, live)
}

func TestOpenSession_CloseDuringPingFlood(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var init map[string]any
		if err := conn.ReadJSON(&init); err != nil {
			return
		}

		// Drain pong replies so the flood below never backs up
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for i := 0; ; i++ {
			frame := fmt.Sprintf(`{"type":"ping","ping_event":{"event_id":%d}}`, i)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := NewClient("key-1", "agent-1")

	// The read loop answers every ping; closing mid-flood exercises the
	// pong write racing the close frame. Jitter the close point so the
	// race lands at different moments across iterations.
	for i := 0; i < 25; i++ {
		live, err := client.OpenSession(context.Background(), wsURL(srv), nil, nil)
		require.NoError(t, err)

		time.Sleep(time.Duration(i%5) * time.Millisecond)
		_ = live.Close()

		for range live.Events() {
		}
	}
}

func TestOpenSession_DialFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("key-1", "agent-1")
	_, err := client.OpenSession(context.Background(), wsURL(srv), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
