package services

import (
	"context"
	"slices"
	"strings"

	"github.com/sourcegraph/conc"

	"ikari-backend/internal/config"
	"ikari-backend/internal/models"
)

const replyMaxOutputTokens = 1024

// ChatService runs one stateless chat turn: a reply from the completion
// model, then anger, progress and speech for that reply in parallel.
type ChatService struct {
	completer Completer
	analyzer  *Analyzer
	synth     Synthesizer
	prompts   config.Prompts
}

// NewChatService wires a turn runner. completer and synth may be nil when
// they failed to initialize; turns then fail with UnavailableError or carry
// empty audio respectively.
func NewChatService(completer Completer, synth Synthesizer, prompts config.Prompts, progressScale string) (*ChatService, error) {
	analyzer, err := NewAnalyzer(completer, prompts, progressScale)
	if err != nil {
		return nil, err
	}
	return &ChatService{
		completer: completer,
		analyzer:  analyzer,
		synth:     synth,
		prompts:   prompts,
	}, nil
}

// Turn produces the reply for req and its derived scores. Only a missing
// model or a failed reply completion is returned as an error.
func (s *ChatService) Turn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if s.completer == nil {
		return nil, &UnavailableError{Message: "completion model not initialized"}
	}

	reply, err := s.completer.Complete(ctx, BuildChatPrompt(s.prompts, req.Messages), GenerationOptions{
		Temperature:     float32(req.SamplingTemperature()),
		MaxOutputTokens: replyMaxOutputTokens,
	})
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	history := append(slices.Clone(req.Messages), models.Message{
		Role:    models.RoleAssistant,
		Content: reply,
	})

	// The turn always waits for every analysis, even if the caller went away.
	fanCtx := context.WithoutCancel(ctx)

	var (
		audio    Outcome[string]
		anger    Outcome[int]
		progress Outcome[int]
	)
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		audio = SpeakBase64(fanCtx, s.synth, reply)
	})
	wg.Go(func() {
		anger = s.scoreLatestUser(fanCtx, req)
	})
	wg.Go(func() {
		progress = s.analyzer.ScoreProgress(fanCtx, history)
	})
	wg.Wait()

	return &models.ChatResponse{
		Response: reply,
		Point:    anger.Value,
		Progress: progress.Value,
		Audio:    audio.Value,
	}, nil
}

// ProgressRange reports the range of the progress score in responses.
func (s *ChatService) ProgressRange() Scale {
	return s.analyzer.ProgressRange()
}

func (s *ChatService) scoreLatestUser(ctx context.Context, req models.ChatRequest) Outcome[int] {
	last, ok := req.LastMessage()
	if !ok || last.Role != models.RoleUser {
		return succeeded(AngerSkipped)
	}
	return s.analyzer.ScoreAnger(ctx, last.Content)
}

// BuildChatPrompt renders the persona followed by the history as
// "User:"/"Assistant:" lines, ending with an "Assistant: " cue.
func BuildChatPrompt(prompts config.Prompts, messages []models.Message) string {
	var b strings.Builder

	b.WriteString(prompts.Character)
	b.WriteString("\n")
	b.WriteString(prompts.Format)
	b.WriteString("\n\n")

	for _, msg := range messages {
		if msg.Role == models.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	b.WriteString("Assistant: ")
	return b.String()
}
