package router

import (
	"encoding/csv"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotMatched is returned when unknown command is issued
	ErrNotMatched = errors.New("command not matched")
)

// Router implements routing dispatch
type Router struct {
	Routes             map[string]*Route
	Groups             []*Group
	GroupSorter        GroupSorterFunc
	DefaultRouteSorter RouteSorterFunc
	Middleware         []MiddlewareFunc
	m                  sync.Mutex
}

// Dispatch tries to find matching route and execute it
func (router *Router) Dispatch(session *discordgo.Session, prefix, userID string, msg *discordgo.Message) (err error) {
	if msg.Author == nil || msg.Author.ID == userID || msg.Author.Bot {
		return nil
	}

	raw := msg.Content
	if prefix == "" || !strings.HasPrefix(raw, prefix) {
		return nil
	}

	raw = strings.TrimSpace(strings.TrimPrefix(raw, prefix))
	if raw == "" {
		return nil
	}

	args, err := parseArgs(raw)
	if err != nil {
		return err
	}

	for _, r := range router.sorted() {
		if !r.Matcher(raw) {
			continue
		}

		return router.bake(r)(&Context{
			Session: session,
			Message: msg,
			Route:   r,
			Prefix:  prefix,
			Raw:     raw,
			Args:    args,
		})
	}

	return ErrNotMatched
}

func parseArgs(raw string) (Args, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = ' '
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	args, err := reader.Read()
	if err != nil {
		return nil, err
	}

	return args, nil
}

func (router *Router) sorted() []*Route {
	router.m.Lock()
	defer router.m.Unlock()

	routes := make([]*Route, 0, len(router.Routes))

	for _, r := range router.Routes {
		routes = append(routes, r)
	}

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Name < routes[j].Name
	})

	return routes
}

func (router *Router) bake(r *Route) HandlerFunc {
	router.m.Lock()
	defer router.m.Unlock()

	if r.Baked != nil {
		return r.Baked
	}

	r.Baked = r.Handler
	for i := len(router.Middleware) - 1; i >= 0; i-- {
		r.Baked = router.Middleware[i](r.Baked)
	}

	return r.Baked
}

// Group returns group with given name
func (router *Router) Group(name string) (cand *Group) {
	cand = &Group{
		Name:        name,
		RouteSorter: router.DefaultRouteSorter,
		Router:      router,
		Data:        make(map[string]interface{}),
	}
	i := sort.Search(len(router.Groups), func(i int) bool {
		return router.GroupSorter(router.Groups[i], cand)
	})

	if i == len(router.Groups) || router.Groups[i].Name != name {
		router.Groups = append(router.Groups[:i], append([]*Group{cand}, router.Groups[i:]...)...)
	} else {
		cand = router.Groups[i]
	}

	return
}

// Route return route with given parameters
func (router *Router) Route(matcher MatcherFunc, name, desc string, handler HandlerFunc) (route *Route) {
	router.m.Lock()
	defer router.m.Unlock()

	var ok bool
	if route, ok = router.Routes[name]; !ok {
		route = &Route{
			Name:        name,
			Description: desc,
			Matcher:     matcher,
			Handler:     handler,
			Router:      router,
			Data:        make(map[string]interface{}),
		}
		router.Routes[name] = route
	}

	return
}

func nameMatcher(name string, alias ...string) MatcherFunc {
	return func(raw string) bool {
		parts := strings.Fields(raw)

		if len(parts) == 0 {
			return false
		}

		cmd := strings.ToLower(parts[0])

		if cmd == name {
			return true
		}

		for _, a := range alias {
			if cmd == a {
				return true
			}
		}

		return false
	}
}

// On creates new route in given group using name matcher
func (router *Router) On(group, name, desc string, handler HandlerFunc) (route *Route) {
	return router.Group(group).On(name, desc, handler)
}

// OnAlias creates new route in given group using alias name matcher
func (router *Router) OnAlias(group, name, desc string, alias []string, handler HandlerFunc) (route *Route) {
	return router.Group(group).OnAlias(name, desc, alias, handler)
}

// AppendMiddleware append middleware to end of the chain
func (router *Router) AppendMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append(router.Middleware, middleware)
}

// PrependMiddleware append middleware to beginning of the chain
func (router *Router) PrependMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append([]MiddlewareFunc{middleware}, router.Middleware...)
}
