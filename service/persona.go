package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"
)

// SessionConfig is the personalization snapshot handed to the voice
// gateway as per-session overrides
type SessionConfig struct {
	SystemPrompt string `json:"systemPrompt"`
	FirstMessage string `json:"firstMessage"`
	VoiceID      string `json:"voiceId"`
	AIName       string `json:"aiName"`
	UserName     string `json:"userName"`
}

const fallbackPrompt = `You are a warm, empathetic AI companion. Use casual, natural language and show genuine care. Ask follow-up questions to keep the conversation flowing.`

const fallbackGreeting = "Hey there! I'm really glad you're here. How are you doing today?"

// BuildSessionConfig composes the system prompt, opening line, and voice
// for one session from the stored profile and the selected memories.
// The function is pure: identical inputs produce identical output, and
// the current date enters only as a parameter.
func BuildSessionConfig(user *models.User, memories []string, today time.Time) SessionConfig {
	cfg := SessionConfig{}
	if user.VoiceID != nil {
		cfg.VoiceID = *user.VoiceID
	}

	// Users who skipped onboarding still get a usable generic companion
	if !user.HasConfiguredPersona() {
		cfg.SystemPrompt = fallbackPrompt
		cfg.FirstMessage = fallbackGreeting
		cfg.AIName = "your AI friend"
		cfg.UserName = user.DisplayName()
		return cfg
	}

	aiName := *user.AIName
	userName := user.DisplayName()
	behavior := *user.AIBehavior

	memoriesText := "No memories yet. This is the beginning of your story together."
	if len(memories) > 0 {
		memoriesText = strings.Join(memories, ". ") + "."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your name is %s. You are a conversational companion for %s.\n\n", aiName, userName)
	fmt.Fprintf(&b, "Your personality and behavior: %s\n\n", behavior)
	fmt.Fprintf(&b, "Today's date is %s.\n\n", today.Format(dateLayout))
	b.WriteString("Important guidelines:\n")
	fmt.Fprintf(&b, "- Always stay in character as %s. Never break character and never claim to be an AI, a language model, or a computer program\n", aiName)
	b.WriteString("- Use natural, conversational language suited to being spoken aloud\n")
	b.WriteString("- Ask follow-up questions to keep the conversation flowing\n")
	fmt.Fprintf(&b, "- Show genuine interest in what %s shares\n\n", userName)
	fmt.Fprintf(&b, "Things you remember about %s: %s\n\n", userName, memoriesText)
	fmt.Fprintf(&b, "Remember: you are %s, %s's trusted companion. Make every conversation meaningful.", aiName, userName)
	cfg.SystemPrompt = b.String()

	if len(memories) > 0 {
		cfg.FirstMessage = fmt.Sprintf("Hey %s, it's %s! I was just thinking about our last conversation. How have you been?", userName, aiName)
	} else {
		cfg.FirstMessage = fmt.Sprintf("Hi %s! I'm %s. It's so nice to finally meet you. How are you doing today?", userName, aiName)
	}

	cfg.AIName = aiName
	cfg.UserName = userName
	return cfg
}
