package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/bobmcallan/vire-backtest/internal/handlers"
)

// RouteHandler is a function type for HTTP handlers.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers.
type MethodRouter map[string]RouteHandler

// RouteByMethod dispatches on r.Method. Other methods get 405 with an Allow
// header listing the accepted ones.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	if handler, ok := routes[r.Method]; ok {
		handler(w, r)
		return
	}
	allowed := make([]string, 0, len(routes))
	for m := range routes {
		allowed = append(allowed, m)
	}
	slices.Sort(allowed)
	handlers.MethodNotAllowed(w, r, allowed...)
}

// RouteResourceCollection routes a collection: GET lists, POST appends.
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create RouteHandler) {
	RouteByMethod(w, r, MethodRouter{}.
		with(http.MethodGet, list).
		with(http.MethodPost, create))
}

// RouteResourceItem routes one addressed row or column: GET reads, PUT
// edits, DELETE removes.
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, update, del RouteHandler) {
	RouteByMethod(w, r, MethodRouter{}.
		with(http.MethodGet, get).
		with(http.MethodPut, update).
		with(http.MethodDelete, del))
}

func (m MethodRouter) with(method string, h RouteHandler) MethodRouter {
	if h != nil {
		m[method] = h
	}
	return m
}

// RouteItemActions sends POST .../{item}/{action} to the matching action
// handler and every other request to item.
func RouteItemActions(w http.ResponseWriter, r *http.Request, actions map[string]RouteHandler, item RouteHandler) {
	if r.Method == http.MethodPost {
		for name, handler := range actions {
			if strings.HasSuffix(r.URL.Path, "/"+name) {
				handler(w, r)
				return
			}
		}
	}
	item(w, r)
}
