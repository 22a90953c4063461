package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []string{"AAPL", "AMZN", "MSFT"}

func TestTagInput_CommitIsIdempotent(t *testing.T) {
	in := NewTagInput(10)
	assert.True(t, in.Commit("AAPL"))
	assert.False(t, in.Commit("aapl "))
	assert.Equal(t, []string{"AAPL"}, in.Tags())

	in.Commit("MSFT")
	in.Remove("AAPL")
	in.Commit("AAPL")
	assert.Equal(t, []string{"MSFT", "AAPL"}, in.Tags(), "reinsertion moves to the end")
}

func TestTagInput_SuggestionsAndNavigation(t *testing.T) {
	in := NewTagInput(10)
	in.SetText("a", testCatalog)
	assert.Equal(t, []string{"AAPL", "AMZN"}, in.Suggestions())
	assert.Equal(t, -1, in.Cursor())

	in.Navigate(1)
	in.Navigate(1)
	ticker, added := in.Confirm()
	assert.Equal(t, "AMZN", ticker)
	assert.True(t, added)
	assert.Equal(t, []string{"AMZN"}, in.Tags())
	assert.Empty(t, in.Text())
	assert.Nil(t, in.Suggestions())
}

func TestTagInput_NavigationWraps(t *testing.T) {
	in := NewTagInput(10)
	in.SetText("A", testCatalog)

	in.Navigate(1)
	in.Navigate(1)
	assert.Equal(t, 1, in.Cursor())
	in.Navigate(1)
	assert.Equal(t, 0, in.Cursor(), "down from last wraps to first")
	in.Navigate(-1)
	assert.Equal(t, 1, in.Cursor(), "up from first wraps to last")
}

func TestTagInput_NavigateUpFromNone(t *testing.T) {
	in := NewTagInput(10)
	in.SetText("X", []string{"XA", "XB", "XC", "XD"})

	in.Navigate(-1)
	assert.Equal(t, 2, in.Cursor(), "-1 minus one, modulo 4")

	in.SetText("A", testCatalog)
	in.Navigate(-1)
	assert.Equal(t, 0, in.Cursor(), "-1 minus one, modulo 2")
}

func TestTagInput_NavigateIgnoredWhenClosed(t *testing.T) {
	in := NewTagInput(10)
	in.Navigate(1)
	assert.Equal(t, -1, in.Cursor())

	in.SetText("Q", testCatalog)
	assert.Nil(t, in.Suggestions(), "no matches closes the list")
	in.Navigate(1)
	assert.Equal(t, -1, in.Cursor())
}

func TestTagInput_SuggestionLimit(t *testing.T) {
	var catalog []string
	for c := 'A'; c <= 'Z'; c++ {
		catalog = append(catalog, "X"+string(c))
	}
	in := NewTagInput(0)
	in.SetText("x", catalog)
	require.Len(t, in.Suggestions(), DefaultSuggestionLimit)
	assert.Equal(t, "XA", in.Suggestions()[0])
}

func TestTagInput_ConfirmRawText(t *testing.T) {
	in := NewTagInput(10)
	in.SetText("  nvda ", testCatalog)
	ticker, added := in.Confirm()
	assert.Equal(t, "NVDA", ticker)
	assert.True(t, added)

	in.SetText("   ", testCatalog)
	_, added = in.Confirm()
	assert.False(t, added, "blank text only clears")
	assert.Equal(t, []string{"NVDA"}, in.Tags())
	assert.Empty(t, in.Text())
}

func TestTagInput_EraseBackward(t *testing.T) {
	in := NewTagInput(10)
	in.Commit("AAPL")
	in.Commit("MSFT")

	in.SetText("M", testCatalog)
	_, ok := in.EraseBackward()
	assert.False(t, ok, "non-empty text is edited, not tags")

	in.SetText("", testCatalog)
	last, ok := in.EraseBackward()
	assert.True(t, ok)
	assert.Equal(t, "MSFT", last)
	assert.Equal(t, []string{"AAPL"}, in.Tags())
}

func TestTagInput_Dismiss(t *testing.T) {
	in := NewTagInput(10)
	in.Commit("AAPL")
	in.SetText("A", testCatalog)
	in.Navigate(1)
	in.Dismiss()

	assert.Nil(t, in.Suggestions())
	assert.Equal(t, -1, in.Cursor())
	assert.Equal(t, []string{"AAPL"}, in.Tags())
}

func TestTagInput_Import(t *testing.T) {
	in := NewTagInput(10)
	in.Commit("MSFT")
	added := in.Import([]string{"AAPL", "msft", "GOOG", "AAPL", ""})
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"MSFT", "AAPL", "GOOG"}, in.Tags())
}

func TestTagInput_RemoveAnyPosition(t *testing.T) {
	in := NewTagInput(10)
	in.Import([]string{"A", "B", "C"})
	assert.True(t, in.Remove("b"))
	assert.False(t, in.Remove("Z"))
	assert.Equal(t, []string{"A", "C"}, in.Tags())

	in.Clear()
	assert.Empty(t, in.Tags())
}

func TestMatchPrefix(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "AMZN"}, MatchPrefix("a", testCatalog, 10))
	assert.Equal(t, []string{"AAPL"}, MatchPrefix("A", testCatalog, 1))
	assert.Nil(t, MatchPrefix("", testCatalog, 10))
	assert.Nil(t, MatchPrefix("Z", testCatalog, 10))
}
