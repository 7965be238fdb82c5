// Package ideas turns form preferences into drawing suggestions, using live
// prompts when enough are available and the built-in catalog otherwise.
package ideas

import (
	"context"
	"html"
	"math/rand/v2"
	"strings"

	"drawing-prompter/internal/models"
	"drawing-prompter/internal/prompter/catalog"
	"drawing-prompter/internal/prompter/scraper"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SuggestionCount is how many suggestions a request produces.
const SuggestionCount = 3

// PromptSource yields live prompt text. A nil slice means "nothing usable".
type PromptSource interface {
	Name() string
	Prompts(ctx context.Context) ([]string, error)
}

type Generator struct {
	sources []PromptSource
	catalog *catalog.Catalog
	policy  *bluemonday.Policy
	logger  zerolog.Logger
}

func NewGenerator(cat *catalog.Catalog, logger zerolog.Logger, sources ...PromptSource) *Generator {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Generator{
		sources: sources,
		catalog: cat,
		policy:  DescriptionPolicy(),
		logger:  logger,
	}
}

// DescriptionPolicy allows only <strong> emphasis.
func DescriptionPolicy() *bluemonday.Policy {
	return bluemonday.NewPolicy().AllowElements("strong")
}

type livePrompt struct {
	text   string
	source models.Source
}

// gather queries every source concurrently. The result is the deduplicated
// union in source order, or nil when it is not larger than scraper.MinPrompts.
func (g *Generator) gather(ctx context.Context) []livePrompt {
	results := make([][]string, len(g.sources))
	eg, ectx := errgroup.WithContext(ctx)
	for i, src := range g.sources {
		eg.Go(func() error {
			prompts, err := src.Prompts(ectx)
			if err != nil {
				g.logger.Warn().Err(err).Str("source", src.Name()).Msg("prompt source failed")
				return nil
			}
			results[i] = prompts
			return nil
		})
	}
	_ = eg.Wait()

	var all []livePrompt
	seen := make(map[string]struct{})
	for i, prompts := range results {
		for _, p := range prompts {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			all = append(all, livePrompt{text: p, source: models.Source(g.sources[i].Name())})
		}
	}
	if len(all) <= scraper.MinPrompts {
		return nil
	}
	return all
}

// Generate returns up to SuggestionCount suggestions. Live prompts are
// picked at random without repetition; with none available every
// suggestion comes from the catalog category matching the subject.
func (g *Generator) Generate(ctx context.Context, prefs models.Preferences) []models.Suggestion {
	live := g.gather(ctx)
	if live == nil {
		g.logger.Info().Msg("using local fallback ideas")
		return g.Fallback(prefs)
	}

	n := min(SuggestionCount, len(live))
	out := make([]models.Suggestion, 0, n)
	for _, idx := range rand.Perm(len(live))[:n] {
		out = append(out, g.Idea(live[idx].text, prefs, live[idx].source))
	}
	g.logger.Info().Int("suggestions", len(out)).Msg("generated live ideas")
	return out
}

// Fallback builds SuggestionCount ideas from the catalog alone.
func (g *Generator) Fallback(prefs models.Preferences) []models.Suggestion {
	cat := catalog.CategoryFor(prefs.Subject)
	out := make([]models.Suggestion, 0, SuggestionCount)
	for range SuggestionCount {
		out = append(out, g.Idea(g.catalog.RandomIdea(cat), prefs, models.SourceLocal))
	}
	return out
}

// Prompts returns the live prompts, or the whole catalog when there are
// not enough of them.
func (g *Generator) Prompts(ctx context.Context) ([]string, models.Source) {
	live := g.gather(ctx)
	if live == nil {
		return g.catalog.All(), models.SourceLocal
	}
	out := make([]string, len(live))
	for i, p := range live {
		out[i] = p.text
	}
	return out, live[0].source
}

// Idea builds one suggestion around prompt with a random modifier.
func (g *Generator) Idea(prompt string, prefs models.Preferences, source models.Source) models.Suggestion {
	return models.Suggestion{
		Title:       prompt,
		Description: g.policy.Sanitize(Describe(prompt, prefs, g.catalog.RandomModifier())),
		Source:      source,
	}
}

// Describe renders the multi-line description of an idea. Values are
// escaped; the only markup is <strong>.
func Describe(prompt string, prefs models.Preferences, modifier string) string {
	esc := html.EscapeString
	var b strings.Builder

	b.WriteString("💡 <strong>" + esc(prompt) + "</strong>\n\n")
	b.WriteString("📋 <strong>Configuración:</strong>\n")
	if prefs.Difficulty != "" {
		b.WriteString("• Dificultad: " + esc(prefs.Difficulty) + "\n")
	}
	if prefs.Style != "" {
		b.WriteString("• Estilo: " + esc(prefs.Style) + "\n")
	}
	if prefs.Time != "" {
		b.WriteString("• Tiempo: " + esc(prefs.Time) + "\n")
	}
	if len(prefs.Colors) > 0 {
		b.WriteString("• Paleta sugerida: " + esc(strings.Join(prefs.Colors, ", ")) + "\n")
	}
	if len(prefs.Materials) > 0 {
		b.WriteString("• Materiales: " + esc(strings.Join(prefs.Materials, ", ")) + "\n")
	}

	b.WriteString("\n✨ <strong>Modificadores de dibujo:</strong>\n")
	b.WriteString(esc(modifier))

	if prefs.Mood != "" {
		b.WriteString("\n\n💭 <strong>Mood/Atmósfera:</strong>\n" + esc(prefs.Mood))
	}
	return b.String()
}

// StaticSource serves a fixed prompt list. It backs the CLI's --prompts-file
// flag and tests.
type StaticSource struct {
	name    string
	prompts []string
}

func NewStaticSource(name string, prompts []string) *StaticSource {
	return &StaticSource{name: name, prompts: prompts}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Prompts(context.Context) ([]string, error) {
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out, nil
}
