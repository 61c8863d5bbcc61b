// Package guard decides whether a page may be shown for the current session.
// Guards only shape navigation; the API authorizes every request on its own.
package guard

import (
	"gatherguru/pkg/authstate"
	"gatherguru/pkg/claims"
)

type Kind int

const (
	Admin Kind = iota
	Organizer
	User
	// AuthPage guards the login and signup forms: signed-in visitors go to their dashboard.
	AuthPage
)

const rootPath = "/"

type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(path string) Decision { return Decision{Redirect: path} }

func requireRole(s authstate.Session, role claims.Role, otherwise string) Decision {
	if s.IsAuthenticated && s.Role == role {
		return allow()
	}
	return redirect(otherwise)
}

// Check evaluates a guard against a session snapshot.
func Check(kind Kind, s authstate.Session) Decision {
	switch kind {
	case Admin:
		return requireRole(s, claims.RoleAdmin, claims.RoleAdmin.LoginPath())
	case Organizer:
		return requireRole(s, claims.RoleOrganizer, claims.RoleOrganizer.LoginPath())
	case User:
		return requireRole(s, claims.RoleUser, rootPath)
	case AuthPage:
		if !s.IsAuthenticated {
			return allow()
		}
		switch s.Role {
		case claims.RoleAdmin, claims.RoleOrganizer, claims.RoleUser:
			return redirect(s.Role.DashboardPath())
		case claims.RoleUnknown:
		}
		return allow()
	}
	return redirect(rootPath)
}

// Enter evaluates a guard against the live store. The user guard re-validates the session
// first, so an expired token is logged out before the decision is made.
func Enter(kind Kind, store *authstate.Store) Decision {
	if kind == User {
		store.ValidateSession()
	}
	return Check(kind, store.Snapshot())
}
