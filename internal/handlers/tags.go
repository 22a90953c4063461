package handlers

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// TagHandler exposes the scan ticker tag input.
type TagHandler struct {
	logger *common.Logger
	store  Dispatcher
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(logger *common.Logger, store Dispatcher) *TagHandler {
	return &TagHandler{logger: logger, store: store}
}

// HandleTags handles /api/tags.
//
//	GET    returns the snapshot
//	POST   commits the current text, or {"ticker"} when given
//	DELETE clears all tags
func (h *TagHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		apply(w, r, h.store, workspace.Refresh{})
	case http.MethodPost:
		var body struct {
			Ticker string `json:"ticker"`
		}
		if r.ContentLength != 0 {
			if err := DecodeJSON(r, &body); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		apply(w, r, h.store, workspace.CommitTag{Ticker: body.Ticker})
	case http.MethodDelete:
		apply(w, r, h.store, workspace.ClearTags{})
	default:
		MethodNotAllowed(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

// HandleText handles PUT /api/tags/text with {"text": "..."} and refreshes
// the suggestion list.
func (h *TagHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.store, workspace.SetTagText{Text: body.Text})
}

// HandleConfirm handles POST /api/tags/confirm (the Enter key).
func (h *TagHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	in := &workspace.ConfirmTag{}
	snap, err := h.store.Dispatch(r.Context(), in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Committed string             `json:"committed"`
		Added     bool               `json:"added"`
		Snapshot  workspace.Snapshot `json:"snapshot"`
	}{in.Committed, in.Added, snap})
}

// HandleHighlight handles POST /api/tags/highlight with {"delta": 1|-1}.
func (h *TagHandler) HandleHighlight(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.store, workspace.MoveHighlight{Delta: body.Delta})
}

// HandleErase handles POST /api/tags/erase (Backspace on empty text).
func (h *TagHandler) HandleErase(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	apply(w, r, h.store, workspace.EraseTag{})
}

// HandleDismiss handles POST /api/tags/dismiss (Escape or blur).
func (h *TagHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	apply(w, r, h.store, workspace.DismissSuggestions{})
}

// HandleImport handles POST /api/tags/import. With no tickers the last
// screener matches are imported.
func (h *TagHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Tickers []string `json:"tickers"`
	}
	if r.ContentLength != 0 {
		if err := DecodeJSON(r, &body); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	in := &workspace.ImportTags{Tickers: body.Tickers}
	snap, err := h.store.Dispatch(r.Context(), in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Added    int                `json:"added"`
		Snapshot workspace.Snapshot `json:"snapshot"`
	}{in.Added, snap})
}

// HandleRemove handles DELETE /api/tags/{ticker}.
func (h *TagHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	ticker, ok := pathTail(w, r, "/api/tags/")
	if !ok {
		return
	}
	apply(w, r, h.store, workspace.RemoveTag{Ticker: strings.ToUpper(ticker)})
}
