package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/offertalk/internal/completion"
	"github.com/ashureev/offertalk/internal/domain"
)

// extractionTemperature keeps fact extraction deterministic-leaning, distinct
// from the sampling temperature used for negotiation replies.
const extractionTemperature = 0.1

const extractionPromptTemplate = `Extract factual information from this %[1]s's message as complete sentences.

For job_seeker messages, create sentences about:
- Their experience and background
- Skills and expertise
- Education and certifications
- Achievements and impact
- Current situation and preferences
- Compensation expectations

For recruiter messages, create sentences about:
- Company benefits and perks
- Role requirements and expectations
- Team and company culture
- Growth and development opportunities
- Compensation structure
- Working arrangements

Return ONLY facts that were explicitly mentioned in the message.
Format each fact as a complete, clear sentence.`

// FactExtractor turns a raw utterance into atomic fact sentences scoped to a
// role's conventional topics.
type FactExtractor struct {
	completer completion.Completer
	logger    *slog.Logger
}

// NewFactExtractor creates a fact extractor using the given completion client.
func NewFactExtractor(completer completion.Completer, logger *slog.Logger) *FactExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FactExtractor{
		completer: completer,
		logger:    logger,
	}
}

// Extract asks the completion service for fact sentences stated in message,
// one per line, order preserved. A completion failure is recorded and yields
// no facts; the caller proceeds without them.
func (e *FactExtractor) Extract(ctx context.Context, message string, role domain.Role) []string {
	out, err := e.completer.Complete(ctx, completion.Request{
		System:      fmt.Sprintf(extractionPromptTemplate, role),
		User:        fmt.Sprintf("Message: %s\nExtract facts as sentences from this %s message.", message, role),
		Temperature: extractionTemperature,
	})
	if err != nil {
		e.logger.Warn("fact extraction failed", "role", role, "error", err)
		return nil
	}

	var facts []string
	for _, line := range strings.Split(out, "\n") {
		if fact := strings.TrimSpace(line); fact != "" {
			facts = append(facts, fact)
		}
	}
	e.logger.Debug("extracted facts", "role", role, "count", len(facts))
	return facts
}
