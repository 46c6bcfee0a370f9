package services

import (
	"context"
	"strings"
	"sync"
)

type stubCompleter struct {
	mu       sync.Mutex
	prompts  []string
	options  []GenerationOptions
	complete func(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.options = append(s.options, opts)
	s.mu.Unlock()
	return s.complete(ctx, prompt, opts)
}

func (s *stubCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// replyFunc answers the reply call with reply and every scoring call with score.
func replyFunc(reply, score string) func(context.Context, string, GenerationOptions) (string, error) {
	return func(_ context.Context, prompt string, opts GenerationOptions) (string, error) {
		if opts.MaxOutputTokens == replyMaxOutputTokens {
			return reply, nil
		}
		return score, nil
	}
}

func isAngerPrompt(prompt string) bool {
	return strings.Contains(prompt, "怒りの度合い")
}

type stubSynthesizer struct {
	mu    sync.Mutex
	texts []string
	audio []byte
	err   error
	hook  func()
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
	if s.hook != nil {
		s.hook()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}
