// Package guard decides, per requested destination, whether the embedding
// application may render it, must redirect, or must wait for session restore.
package guard

import (
	"github.com/DimasRabelo/delivery-frontend/domain"
	"github.com/DimasRabelo/delivery-frontend/session"
)

// Kind classifies a destination for the access decision.
type Kind int

const (
	// KindPublic renders for everyone.
	KindPublic Kind = iota
	// KindAuthenticated renders for any authenticated user; visitors are
	// redirected to the landing page with the sign-in prompt opened.
	KindAuthenticated
	// KindRoleRestricted renders only for an allowed role; everyone else is
	// silently redirected to the landing page, without the prompt.
	KindRoleRestricted
	// KindLanding is the root dispatcher: couriers and vendor staff are
	// redirected to their panels, everyone else sees the public home.
	KindLanding
)

// Destination is a requested view. Roles is only consulted for
// KindRoleRestricted destinations.
type Destination struct {
	Kind  Kind
	Roles []domain.Role
}

// Well-known destinations of the route table.
var (
	Landing     = Destination{Kind: KindLanding}
	CustomerApp = Destination{Kind: KindAuthenticated}
	// The vendor panel also admits platform admins.
	VendorPanel  = Destination{Kind: KindRoleRestricted, Roles: []domain.Role{domain.RoleVendor, domain.RoleAdmin}}
	CourierPanel = Destination{Kind: KindRoleRestricted, Roles: []domain.Role{domain.RoleCourier}}
)

// Target is a fixed redirect target. Targets are never computed dynamically.
type Target string

const (
	TargetLanding      Target = "/"
	TargetCourierPanel Target = "/courier/panel"
	TargetVendorPanel  Target = "/vendor/orders"
)

type Decision int

const (
	DecisionRender Decision = iota
	DecisionRedirect
	DecisionPending
)

// Outcome is the result of evaluating a destination against a session
// snapshot. OpenPrompt is set when the redirect must be accompanied by
// opening the sign-in prompt; the two belong together.
type Outcome struct {
	Decision   Decision
	Target     Target
	OpenPrompt bool
}

// Evaluate is the pure decision function. IsLoading wins over every other
// condition: deciding anything before restore completes would flash a
// logged-out UI at returning users.
func Evaluate(s session.State, dest Destination) Outcome {
	if s.IsLoading {
		return Outcome{Decision: DecisionPending}
	}

	switch dest.Kind {
	case KindAuthenticated:
		if s.IsAuthenticated() {
			return Outcome{Decision: DecisionRender}
		}
		return Outcome{Decision: DecisionRedirect, Target: TargetLanding, OpenPrompt: true}

	case KindRoleRestricted:
		if s.IsAuthenticated() && roleAllowed(dest.Roles, s.User.Role) {
			return Outcome{Decision: DecisionRender}
		}
		// A role mismatch is not a "please log in" situation: no prompt.
		return Outcome{Decision: DecisionRedirect, Target: TargetLanding}

	case KindLanding:
		if s.IsAuthenticated() {
			switch s.User.Role {
			case domain.RoleCourier:
				return Outcome{Decision: DecisionRedirect, Target: TargetCourierPanel}
			case domain.RoleVendor:
				return Outcome{Decision: DecisionRedirect, Target: TargetVendorPanel}
			}
		}
		// Customers and anonymous visitors both see the public home.
		return Outcome{Decision: DecisionRender}

	default: // KindPublic
		return Outcome{Decision: DecisionRender}
	}
}

func roleAllowed(allowed []domain.Role, role domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Navigator performs the actual view change for a redirect outcome.
type Navigator interface {
	Navigate(target Target)
}

// Guard couples the pure evaluation with its effects.
type Guard struct {
	sessions *session.Store
	nav      Navigator
}

func New(sessions *session.Store, nav Navigator) *Guard {
	return &Guard{sessions: sessions, nav: nav}
}

// Check evaluates the destination against the current session and applies the
// outcome. Prompt opening and navigation happen together: a redirect that
// loses its prompt is a defect.
func (g *Guard) Check(dest Destination) Outcome {
	out := Evaluate(g.sessions.Snapshot(), dest)
	g.Apply(out)
	return out
}

// Apply performs the side effects of an outcome. Render and Pending outcomes
// have none.
func (g *Guard) Apply(out Outcome) {
	if out.Decision != DecisionRedirect {
		return
	}
	if out.OpenPrompt {
		g.sessions.OpenPrompt()
	}
	g.nav.Navigate(out.Target)
}
