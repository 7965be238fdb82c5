package models

type Source string

const (
	SourceWeb   Source = "web"
	SourceLLM   Source = "llm"
	SourceLocal Source = "local"
)

// Preferences are the answers of the ideas form.
type Preferences struct {
	Colors     []string `json:"colors"`
	Materials  []string `json:"materials"`
	Time       string   `json:"time"`
	Difficulty string   `json:"difficulty"`
	Style      string   `json:"style"`
	Subject    string   `json:"subject"`
	Mood       string   `json:"mood"`
}

// HasSelection reports whether at least one color or material was chosen.
func (p Preferences) HasSelection() bool {
	return len(p.Colors) > 0 || len(p.Materials) > 0
}

type SuggestionRequest struct {
	Answers Preferences `json:"answers"`
}

type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      Source `json:"source,omitempty"`
}

type SuggestionResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type PromptsResponse struct {
	Prompts []string `json:"prompts"`
	Source  Source   `json:"source,omitempty"`
}
