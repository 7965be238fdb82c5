package ideaclient

import (
	"fmt"
	"html"
	"strings"

	"drawing-prompter/internal/models"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

type ViewKind string

const (
	ViewCards      ViewKind = "cards"
	ViewEmpty      ViewKind = "empty"
	ViewError      ViewKind = "error"
	ViewValidation ViewKind = "validation"
)

const noDescription = "Sin descripción disponible"

type Card struct {
	Heading string `json:"heading"`
	// Body is sanitized HTML with <strong> and <br> only.
	Body string `json:"body"`
}

type View struct {
	Kind    ViewKind `json:"kind"`
	Message string   `json:"message,omitempty"`
	Cards   []Card   `json:"cards,omitempty"`
}

// HTML renders the view as the fragment shown under the form.
func (v View) HTML() string {
	switch v.Kind {
	case ViewCards:
		var b strings.Builder
		for _, c := range v.Cards {
			fmt.Fprintf(&b, "<div class=\"card\"><strong>%s</strong><div class=\"card-body\">%s</div></div>\n",
				html.EscapeString(c.Heading), c.Body)
		}
		return b.String()
	default:
		return fmt.Sprintf("<div class=\"%s\">%s</div>", v.Kind, html.EscapeString(v.Message))
	}
}

type Renderer struct {
	policy *bluemonday.Policy
	md     *converter.Converter
}

func NewRenderer() *Renderer {
	return &Renderer{
		policy: bluemonday.NewPolicy().AllowElements("strong", "br"),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Suggestions renders a success response. An empty list is not an error.
func (r *Renderer) Suggestions(list []models.Suggestion) View {
	if len(list) == 0 {
		return View{Kind: ViewEmpty, Message: MsgNoSuggestions}
	}
	cards := make([]Card, 0, len(list))
	for i, s := range list {
		cards = append(cards, Card{
			Heading: fmt.Sprintf("💡 Idea %d", i+1),
			Body:    r.CardBody(s.Description),
		})
	}
	return View{Kind: ViewCards, Cards: cards}
}

func (r *Renderer) Error(err error) View {
	return View{Kind: ViewError, Message: "Error: " + err.Error()}
}

// CardBody turns a multi-line description into safe HTML.
func (r *Renderer) CardBody(description string) string {
	if description == "" {
		description = noDescription
	}
	return r.policy.Sanitize(strings.ReplaceAll(description, "\n", "<br>"))
}

// Markdown renders a view for terminals.
func (r *Renderer) Markdown(v View) (string, error) {
	if v.Kind != ViewCards {
		return v.Message, nil
	}
	var b strings.Builder
	for i, c := range v.Cards {
		if i > 0 {
			b.WriteString("\n\n")
		}
		md, err := r.md.ConvertString("<h3>" + html.EscapeString(c.Heading) + "</h3><p>" + c.Body + "</p>")
		if err != nil {
			return "", fmt.Errorf("render card %d: %w", i+1, err)
		}
		b.WriteString(md)
	}
	return b.String(), nil
}
