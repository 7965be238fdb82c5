package llmHandlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"drawing-prompter/internal/prompter/scraper"

	"github.com/rs/zerolog"
)

const DefaultPromptCount = 10

const promptSystemMessage = `Eres un profesor de dibujo. Propones ideas breves y concretas para dibujar.
Responde solo con las ideas, una por línea, sin numeración ni texto adicional.`

// Leading list markers such as "1.", "2)", "-", "*" or "•".
var listMarkerRe = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// PromptSource asks a language model for drawing prompts. Lines that would
// not pass the web prompt filter are dropped.
type PromptSource struct {
	client Client
	count  int
	logger zerolog.Logger
}

func NewPromptSource(client Client, count int, logger zerolog.Logger) *PromptSource {
	if count <= 0 {
		count = DefaultPromptCount
	}
	return &PromptSource{client: client, count: count, logger: logger}
}

func (s *PromptSource) Name() string { return "llm" }

func (s *PromptSource) Prompts(ctx context.Context) ([]string, error) {
	ask := fmt.Sprintf("Dame %d ideas de dibujo distintas.", s.count)
	answer, err := s.client.Chat(ctx, promptSystemMessage, []Message{{Role: RoleUser, Content: ask}})
	if err != nil {
		return nil, fmt.Errorf("llm prompts: %w", err)
	}
	prompts := ParsePromptLines(answer)
	s.logger.Debug().Int("prompts", len(prompts)).Msg("llm prompts")
	return prompts, nil
}

// ParsePromptLines splits a model answer into prompts, stripping list
// markers and quotes and dropping duplicates and invalid lines.
func ParsePromptLines(answer string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(answer, "\n") {
		line = listMarkerRe.ReplaceAllString(line, "")
		line = strings.Trim(scraper.CleanText(line), `"“”'`)
		if !scraper.IsValidPrompt(line) {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
