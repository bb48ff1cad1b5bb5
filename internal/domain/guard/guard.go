// Package guard decides whether a protected view may be rendered for the current session.
//
// The decision is a pure function of the session state and the requested location,
// evaluated in a fixed priority order: loading, then redirect, then pass-through.
// Rendering the decision is left to the transport (see internal/http).
package guard

import (
	"net/url"
	"strings"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

// DefaultLoginPath is the login entry point used when Config.LoginPath is empty.
const DefaultLoginPath = "/login"

// Kind identifies which of the three renderings a Decision asks for.
type Kind int

const (
	// KindLoading asks for a non-interactive placeholder; access is not decided yet.
	KindLoading Kind = iota
	// KindRedirect asks for a history-replacing redirect to the login entry point.
	KindRedirect
	// KindAuthorized asks for the protected content to be rendered unmodified.
	KindAuthorized
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindRedirect:
		return "redirect"
	case KindAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Location is the navigation intent captured at evaluation time.
type Location struct {
	Pathname string // escaped path, as sent on the wire
	Search   string // raw query without the leading "?"
}

// String returns the path and query as a relative reference.
func (l Location) String() string {
	p := l.Pathname
	if p == "" {
		p = "/"
	}
	if l.Search == "" {
		return p
	}
	return p + "?" + l.Search
}

// LocationFromURL captures the path and query of u.
// The path keeps its escaping so reserved characters like %3F and %2F survive the round trip.
func LocationFromURL(u *url.URL) Location {
	if u == nil {
		return Location{Pathname: "/"}
	}
	return Location{Pathname: u.EscapedPath(), Search: u.RawQuery}
}

// NavigationState is the opaque payload attached to a redirect so the login flow
// can return the caller to where they were going.
type NavigationState struct {
	From Location
}

// Redirect describes the redirect a Decision of KindRedirect asks for.
type Redirect struct {
	To      string
	State   NavigationState
	Replace bool
}

// Decision is the outcome of a single evaluation.
type Decision struct {
	Kind     Kind
	Redirect *Redirect        // set only for KindRedirect
	User     *domainauth.User // set only for KindAuthorized
}

// Config configures a Guard.
type Config struct {
	LoginPath string
}

// Guard evaluates session state against a requested location.
// It holds no mutable state and is safe for concurrent use.
type Guard struct {
	loginPath string
}

// New constructs a Guard. An empty or non-relative LoginPath falls back to DefaultLoginPath.
func New(cfg Config) *Guard {
	login := strings.TrimSpace(cfg.LoginPath)
	if !strings.HasPrefix(login, "/") || strings.HasPrefix(login, "//") {
		login = DefaultLoginPath
	}
	return &Guard{loginPath: login}
}

// LoginPath returns the configured login entry point.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// Evaluate returns exactly one decision for the given state and location.
func (g *Guard) Evaluate(state domainauth.SessionState, loc Location) Decision {
	if state.Loading {
		return Decision{Kind: KindLoading}
	}

	if state.User == nil {
		return Decision{
			Kind: KindRedirect,
			Redirect: &Redirect{
				To:      g.loginPath,
				State:   NavigationState{From: loc},
				Replace: true,
			},
		}
	}

	return Decision{Kind: KindAuthorized, User: state.User}
}
