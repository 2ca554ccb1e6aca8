package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MinilikBelachew/voice-chat/models"

	"github.com/google/generative-ai-go/genai"
)

const analysisModel = "gemini-2.0-flash"

const analysisPrompt = `Extract durable personal facts about the user from this conversation transcript as bullet points.
Only include information worth remembering for future conversations: preferences, relationships, life events, plans.
Return ONLY bullet points, one per line, starting with "- ".
If there's nothing worth remembering, return "NONE".`

// AnalysisService distills a finished transcript into high-value facts
// using a generative model. It complements the heuristic extractor: the
// rule table catches well-known phrasings cheaply, the model pass catches
// what the rules miss. Optional; sessions run fine without it.
type AnalysisService struct {
	client *genai.Client
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(client *genai.Client) *AnalysisService {
	return &AnalysisService{client: client}
}

// Analyze asks the model to extract memorable facts from a transcript
func (s *AnalysisService) Analyze(ctx context.Context, utterances []models.Utterance) ([]string, error) {
	if s.client == nil {
		return nil, errors.New("generative client not set")
	}
	if len(utterances) == 0 {
		return nil, nil
	}

	var transcript strings.Builder
	for _, u := range utterances {
		transcript.WriteString(string(u.Role) + ": " + u.Text + "\n")
	}

	model := s.client.GenerativeModel(analysisModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(analysisPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(transcript.String()))
	if err != nil {
		return nil, fmt.Errorf("analysis generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			content.WriteString(string(text))
		}
	}

	return parseAnalysisFacts(content.String()), nil
}

func parseAnalysisFacts(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" || content == "NONE" {
		return nil
	}

	var facts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if fact, ok := strings.CutPrefix(line, "- "); ok && fact != "" {
			facts = append(facts, fact)
		}
	}
	return facts
}
