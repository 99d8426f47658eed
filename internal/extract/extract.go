// Package extract scans coach replies for the weekly challenge block the
// Heartview prompt asks the model to emit, and turns it into an unconfirmed
// challenge candidate.
package extract

import (
	"strings"
	"time"

	"github.com/heartview/spark-backend/internal/models"
)

// The model is prompted to format challenges with these exact Korean labels.
// Matching is literal on purpose: a reply that drifts from the format is
// treated as plain conversation, never a half-parsed challenge.
const (
	ChallengeMarker = "이번 주 챌린지"
	TitleLabel      = "미션:"
	StepsLabel      = "방법:"
	DeadlineLabel   = "목표:"
)

// MaxStepLines bounds how far past the steps label the scan looks.
const MaxStepLines = 4

// Challenge extracts a pending challenge candidate from one assistant reply.
// It returns nil when the reply does not contain the literal challenge marker,
// or when a marker is present but no title line follows. Fields whose label is
// absent stay empty. The scan is deterministic and side-effect free.
func Challenge(reply string, now time.Time) *models.PendingChallenge {
	if !strings.Contains(reply, ChallengeMarker) {
		return nil
	}

	lines := strings.Split(reply, "\n")

	var title, deadline string
	var steps []string

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch {
		case title == "" && strings.HasPrefix(line, TitleLabel):
			title = strings.TrimSpace(strings.TrimPrefix(line, TitleLabel))

		case steps == nil && strings.HasPrefix(line, StepsLabel):
			steps = collectSteps(lines, i+1)

		case deadline == "" && strings.HasPrefix(line, DeadlineLabel):
			deadline = strings.TrimSpace(strings.TrimPrefix(line, DeadlineLabel))
		}
	}

	if title == "" {
		return nil
	}

	return &models.PendingChallenge{
		Title:       title,
		Description: strings.Join(steps, "\n"),
		Deadline:    deadline,
		ExtractedAt: now,
	}
}

// collectSteps gathers step-shaped lines from a bounded window after the steps
// label. A line counts as a step when, once trimmed, it starts with a numeric
// dot marker ("1.", "2.", ...) or a dash. Lines past the window are ignored
// even if they look like steps.
func collectSteps(lines []string, start int) []string {
	steps := []string{}
	end := start + MaxStepLines
	if end > len(lines) {
		end = len(lines)
	}
	for _, raw := range lines[start:end] {
		line := strings.TrimSpace(raw)
		if isStepLine(line) {
			steps = append(steps, line)
		}
	}
	return steps
}

func isStepLine(line string) bool {
	if strings.HasPrefix(line, "-") {
		return true
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && i < len(line) && line[i] == '.'
}
