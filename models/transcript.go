package models

// Role identifies the speaker of a transcript utterance
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Utterance is a single entry in a session transcript. The transcript
// buffer lives only for the duration of a session and is never persisted;
// only facts derived from it are stored.
type Utterance struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
