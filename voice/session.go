package voice

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/gorilla/websocket"
)

// Overrides are the per-session persona parameters sent to the gateway
// at connection time. Empty fields fall back to the agent's defaults.
type Overrides struct {
	Prompt       string
	FirstMessage string
	VoiceID      string
}

// TranscriptEvent is a single finalized utterance delivered by the gateway
type TranscriptEvent struct {
	Role models.Role
	Text string
}

// LiveSession is an open bidirectional session with the gateway
type LiveSession interface {
	// Events yields transcript events until the session ends, then closes
	Events() <-chan TranscriptEvent
	// Close terminates the session. Safe to call more than once.
	Close() error
}

// Session is the websocket-backed LiveSession implementation
type Session struct {
	conn      *websocket.Conn
	events    chan TranscriptEvent
	writeMu   sync.Mutex
	closeOnce sync.Once
}

type promptOverride struct {
	Prompt string `json:"prompt"`
}

type agentOverride struct {
	Prompt       *promptOverride `json:"prompt,omitempty"`
	FirstMessage string          `json:"first_message,omitempty"`
}

type ttsOverride struct {
	VoiceID string `json:"voice_id,omitempty"`
}

type configOverride struct {
	Agent *agentOverride `json:"agent,omitempty"`
	TTS   *ttsOverride   `json:"tts,omitempty"`
}

// initiationMessage is the first client frame; it carries the persona
// overrides and opaque metadata echoed back by the gateway's webhooks
type initiationMessage struct {
	Type             string            `json:"type"`
	ConfigOverride   *configOverride   `json:"conversation_config_override,omitempty"`
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty"`
}

// serverEvent is the union of gateway frames we care about. Audio frames
// are deliberately ignored: this backend only consumes the transcript.
type serverEvent struct {
	Type                   string `json:"type"`
	UserTranscriptionEvent *struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event,omitempty"`
	AgentResponseEvent *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event,omitempty"`
	PingEvent *struct {
		EventID int `json:"event_id"`
	} `json:"ping_event,omitempty"`
}

type pongMessage struct {
	Type    string `json:"type"`
	EventID int    `json:"event_id"`
}

// OpenSession dials the signed URL and starts a session with the given
// overrides. Transcript events arrive on the returned session's channel
// until the gateway or the caller closes the connection.
func (c *Client) OpenSession(ctx context.Context, signedURL string, overrides *Overrides, metadata map[string]string) (LiveSession, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, signedURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open gateway session (%d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to open gateway session: %w", err)
	}

	init := initiationMessage{
		Type:             "conversation_initiation_client_data",
		DynamicVariables: metadata,
	}
	if overrides != nil {
		cfg := &configOverride{}
		agent := &agentOverride{FirstMessage: overrides.FirstMessage}
		if overrides.Prompt != "" {
			agent.Prompt = &promptOverride{Prompt: overrides.Prompt}
		}
		cfg.Agent = agent
		if overrides.VoiceID != "" {
			cfg.TTS = &ttsOverride{VoiceID: overrides.VoiceID}
		}
		init.ConfigOverride = cfg
	}

	s := &Session{
		conn:   conn,
		events: make(chan TranscriptEvent, 16),
	}

	if err := s.writeJSON(init); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send session initiation: %w", err)
	}

	go s.readLoop()

	return s, nil
}

// writeJSON serializes writes to the connection. The websocket allows
// one writer at a time; the read loop's pong replies and Close's close
// frame run on different goroutines.
func (s *Session) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Events yields transcript events until the session ends
func (s *Session) Events() <-chan TranscriptEvent {
	return s.events
}

// Close terminates the session
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		// Best-effort close frame; the read loop exits on the closed conn
		s.writeMu.Lock()
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

// readLoop consumes gateway frames, answers pings, and forwards
// transcript events. It closes the events channel when the connection
// drops, which is how session end is signaled to the orchestrator.
func (s *Session) readLoop() {
	defer close(s.events)

	for {
		var event serverEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("voice: session read ended: %v", err)
			}
			return
		}

		switch event.Type {
		case "user_transcript":
			if event.UserTranscriptionEvent != nil {
				s.events <- TranscriptEvent{Role: models.RoleUser, Text: event.UserTranscriptionEvent.UserTranscript}
			}
		case "agent_response":
			if event.AgentResponseEvent != nil {
				s.events <- TranscriptEvent{Role: models.RoleAI, Text: event.AgentResponseEvent.AgentResponse}
			}
		case "ping":
			if event.PingEvent != nil {
				if err := s.writeJSON(pongMessage{Type: "pong", EventID: event.PingEvent.EventID}); err != nil {
					return
				}
			}
		}
	}
}
