package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"ikari-backend/internal/config"
	"ikari-backend/internal/models"
)

const (
	AngerMin      = 1
	AngerMax      = 5
	AngerFallback = 3

	// AngerSkipped is reported when the latest message is not from the user.
	AngerSkipped = 1

	// ProgressEmpty is reported for an empty history without calling the model.
	ProgressEmpty = 0
)

var scoringOptions = GenerationOptions{Temperature: 0.1, MaxOutputTokens: 10}

var errNoDigits = errors.New("model reply contains no digits")

// Scale is the numeric range of a rubric and the value substituted on failure.
type Scale struct {
	Min      int
	Max      int
	Fallback int
}

// ProgressScale maps PROGRESS_SCALE to its range and rubric text.
func ProgressScale(name string, prompts config.Prompts) (Scale, string, error) {
	switch name {
	case config.ScalePercent, "":
		return Scale{Min: 0, Max: 100, Fallback: 50}, prompts.ProgressRubricPercent, nil
	case config.ScaleFive:
		return Scale{Min: 1, Max: 5, Fallback: 3}, prompts.ProgressRubricFive, nil
	default:
		return Scale{}, "", fmt.Errorf("unknown progress scale %q", name)
	}
}

// Analyzer scores a conversation with low-temperature rubric prompts.
type Analyzer struct {
	completer      Completer
	prompts        config.Prompts
	progress       Scale
	progressRubric string
}

func NewAnalyzer(completer Completer, prompts config.Prompts, progressScale string) (*Analyzer, error) {
	scale, rubric, err := ProgressScale(progressScale, prompts)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		completer:      completer,
		prompts:        prompts,
		progress:       scale,
		progressRubric: rubric,
	}, nil
}

// ProgressRange reports the configured progress scale.
func (a *Analyzer) ProgressRange() Scale {
	return a.progress
}

// ScoreAnger rates the anger in text from 1 (none) to 5 (rage).
func (a *Analyzer) ScoreAnger(ctx context.Context, text string) Outcome[int] {
	level, err := a.score(ctx, a.prompts.AngerRubric+text, AngerMin, AngerMax)
	if err != nil {
		log.Printf("Error in anger analysis: %v", err)
		return fellBack(AngerFallback, err)
	}
	return succeeded(level)
}

// ScoreProgress rates how close the conversation is to resolving the user's
// problem. messages should already include the latest assistant reply.
func (a *Analyzer) ScoreProgress(ctx context.Context, messages []models.Message) Outcome[int] {
	if len(messages) == 0 {
		return succeeded(ProgressEmpty)
	}

	prompt := a.progressRubric + a.renderTranscript(messages)
	progress, err := a.score(ctx, prompt, a.progress.Min, a.progress.Max)
	if err != nil {
		log.Printf("Error in progress analysis: %v", err)
		return fellBack(a.progress.Fallback, err)
	}
	return succeeded(progress)
}

func (a *Analyzer) score(ctx context.Context, prompt string, lo, hi int) (int, error) {
	if a.completer == nil {
		return 0, errors.New("completion model not initialized")
	}

	reply, err := a.completer.Complete(ctx, prompt, scoringOptions)
	if err != nil {
		return 0, err
	}
	return parseScore(reply, lo, hi)
}

func (a *Analyzer) renderTranscript(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := a.prompts.AssistantLabel
		if msg.Role == models.RoleUser {
			label = a.prompts.UserLabel
		}
		lines = append(lines, label+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// parseScore keeps only the digits of reply (full-width digits included),
// reads them as one integer and clamps it to [lo, hi]. "Level 4." gives 4;
// "1-5: 3" reads as 153 and clamps to hi.
func parseScore(reply string, lo, hi int) (int, error) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r >= '０' && r <= '９':
			return '0' + (r - '０')
		default:
			return -1
		}
	}, reply)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", errNoDigits, reply)
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return hi, nil
		}
		return 0, err
	}
	return clamp(n, lo, hi), nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
