package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"drawing-prompter/internal/api"
	"drawing-prompter/internal/config"
	"drawing-prompter/internal/ideaclient"
	"drawing-prompter/internal/logging"
	"drawing-prompter/internal/models"
	"drawing-prompter/internal/prompter/catalog"
	"drawing-prompter/internal/prompter/ideas"
	"drawing-prompter/internal/prompter/scraper"

	"github.com/spf13/cobra"
)

// sourceOptions choose where live prompts come from.
type sourceOptions struct {
	promptsFile string
	offline     bool
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.promptsFile, "prompts-file", "", "file with one prompt per line, used as an extra source")
	cmd.Flags().BoolVar(&o.offline, "offline", false, "skip the web and language model sources")
}

// generator builds the suggestion generator for a local run. The returned
// func releases the headless browser, if any.
func (o *sourceOptions) generator(ctx context.Context, cfg *config.Config) (*ideas.Generator, func() error, error) {
	var extra []ideas.PromptSource
	if o.promptsFile != "" {
		prompts, err := readPromptsFile(o.promptsFile)
		if err != nil {
			return nil, nil, err
		}
		extra = append(extra, ideas.NewStaticSource(string(models.SourceLocal), prompts))
	}
	if o.offline {
		gen := ideas.NewGenerator(catalog.Default(), logging.Component("ideas"), extra...)
		return gen, func() error { return nil }, nil
	}
	return api.NewGenerator(ctx, cfg, extra...)
}

// readPromptsFile keeps the lines that pass the same filter as scraped text.
func readPromptsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prompts file: %w", err)
	}
	defer f.Close()

	var prompts []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := scraper.CleanText(sc.Text())
		if scraper.IsValidPrompt(line) {
			prompts = append(prompts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return prompts, nil
}

type ideasOptions struct {
	sourceOptions
	prefs  models.Preferences
	server string
	format string
}

func newIdeasCommand(root *rootOptions) *cobra.Command {
	opts := &ideasOptions{}

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Get three drawing ideas for your preferences",
		Example: `  drawing-prompter ideas --colors rojo,azul --subject Animales
  drawing-prompter ideas --materials acuarela --server http://localhost:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), root.cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.prefs.Colors, "colors", nil, "colors to use")
	cmd.Flags().StringSliceVar(&opts.prefs.Materials, "materials", nil, "materials to use")
	cmd.Flags().StringVar(&opts.prefs.Time, "time", "", "time available")
	cmd.Flags().StringVar(&opts.prefs.Difficulty, "difficulty", "", "difficulty")
	cmd.Flags().StringVar(&opts.prefs.Style, "style", "", "style")
	cmd.Flags().StringVar(&opts.prefs.Subject, "subject", "", "subject, picks the fallback category")
	cmd.Flags().StringVar(&opts.prefs.Mood, "mood", "", "mood or atmosphere")
	cmd.Flags().StringVar(&opts.server, "server", "", "ask a running server instead of generating locally")
	cmd.Flags().StringVar(&opts.format, "format", "markdown", "output format (markdown, html, json)")
	opts.sourceOptions.register(cmd)
	return cmd
}

func (o *ideasOptions) run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	switch o.format {
	case "markdown", "html", "json":
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}

	var (
		view     ideaclient.View
		renderer *ideaclient.Renderer
	)
	if o.server != "" {
		client := ideaclient.New(strings.TrimRight(o.server, "/") + "/api/suggestions")
		renderer = client.Renderer()
		v, err := client.Request(ctx, o.prefs)
		if err != nil {
			if v.Message != "" {
				fmt.Fprintln(out, v.Message)
			}
			return err
		}
		view = v
	} else {
		if !o.prefs.HasSelection() {
			fmt.Fprintln(out, ideaclient.MsgNoSelection)
			return ideaclient.ErrNoSelection
		}
		gen, closeGen, err := o.generator(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeGen()
		renderer = ideaclient.NewRenderer()
		view = renderer.Suggestions(gen.Generate(ctx, o.prefs))
	}

	switch o.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "html":
		_, err := io.WriteString(out, view.HTML())
		return err
	}
	md, err := renderer.Markdown(view)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, md)
	return err
}

func newPromptsCommand(root *rootOptions) *cobra.Command {
	opts := &sourceOptions{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List the live prompts, or the built-in catalog when too few are found",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gen, closeGen, err := opts.generator(ctx, root.cfg)
			if err != nil {
				return err
			}
			defer closeGen()

			prompts, source := gen.Prompts(ctx)
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(models.PromptsResponse{Prompts: prompts, Source: source})
			}
			for _, p := range prompts {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	opts.register(cmd)
	return cmd
}
