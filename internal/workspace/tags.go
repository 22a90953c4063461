package workspace

import (
	"slices"
	"strings"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// DefaultSuggestionLimit caps the suggestion list when no limit is configured.
const DefaultSuggestionLimit = 10

// TagInput is the ticker collection editor: the committed tags, the text
// being typed, and the suggestion list with its highlight cursor.
type TagInput struct {
	text        string
	tags        []string
	suggestions []string
	cursor      int
	limit       int
}

// NewTagInput returns an empty input. limit <= 0 uses DefaultSuggestionLimit.
func NewTagInput(limit int) *TagInput {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &TagInput{cursor: -1, limit: limit}
}

// Tags returns the committed tickers in insertion order.
func (t *TagInput) Tags() []string { return slices.Clone(t.tags) }

// Text is the current raw input.
func (t *TagInput) Text() string { return t.text }

// Suggestions returns the open suggestion list, nil when closed.
func (t *TagInput) Suggestions() []string { return slices.Clone(t.suggestions) }

// Cursor is the highlighted suggestion, -1 for none.
func (t *TagInput) Cursor() int { return t.cursor }

// SetText records the typed text and recomputes prefix suggestions from
// catalog, keeping catalog order.
func (t *TagInput) SetText(text string, catalog []string) {
	t.text = text
	t.cursor = -1
	t.suggestions = MatchPrefix(text, catalog, t.limit)
}

// MatchPrefix returns up to limit catalog entries starting with the
// upper-cased text, in catalog order. Empty text or no match gives nil.
func MatchPrefix(text string, catalog []string, limit int) []string {
	prefix := strings.ToUpper(text)
	if prefix == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	var out []string
	for _, c := range catalog {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Confirm commits the highlighted suggestion, or else the typed text.
// It returns the committed ticker and whether it was newly added.
func (t *TagInput) Confirm() (string, bool) {
	ticker := t.text
	if t.cursor >= 0 && t.cursor < len(t.suggestions) {
		ticker = t.suggestions[t.cursor]
	}
	return models.NormalizeTicker(ticker), t.Commit(ticker)
}

// Navigate moves the cursor by delta modulo the suggestion count, wrapping
// in both directions. The cursor starts at -1, so moving up from no
// highlight lands one above the last suggestion. It is ignored while the
// list is closed.
func (t *TagInput) Navigate(delta int) {
	n := len(t.suggestions)
	if n == 0 {
		return
	}
	t.cursor = ((t.cursor+delta)%n + n) % n
}

// EraseBackward removes the last tag when the text is empty.
func (t *TagInput) EraseBackward() (string, bool) {
	if t.text != "" || len(t.tags) == 0 {
		return "", false
	}
	last := t.tags[len(t.tags)-1]
	t.tags = t.tags[:len(t.tags)-1]
	return last, true
}

// Dismiss closes the suggestion list.
func (t *TagInput) Dismiss() {
	t.suggestions = nil
	t.cursor = -1
}

// Commit appends ticker unless present, then clears the text and closes
// the list. Blank input only clears.
func (t *TagInput) Commit(ticker string) bool {
	ticker = models.NormalizeTicker(ticker)
	t.text = ""
	t.Dismiss()
	if ticker == "" || slices.Contains(t.tags, ticker) {
		return false
	}
	t.tags = append(t.tags, ticker)
	return true
}

// Import appends every ticker not already present and returns how many were added.
func (t *TagInput) Import(tickers []string) int {
	added := 0
	for _, raw := range tickers {
		ticker := models.NormalizeTicker(raw)
		if ticker == "" || slices.Contains(t.tags, ticker) {
			continue
		}
		t.tags = append(t.tags, ticker)
		added++
	}
	return added
}

// Remove deletes ticker wherever it sits.
func (t *TagInput) Remove(ticker string) bool {
	i := slices.Index(t.tags, models.NormalizeTicker(ticker))
	if i < 0 {
		return false
	}
	t.tags = slices.Delete(t.tags, i, i+1)
	return true
}

// Clear drops every tag.
func (t *TagInput) Clear() {
	t.tags = nil
}

