// Package auth identifies the human actor behind a request and checks what
// that actor may do.
package auth

import "context"

// Actor identifies who performed an action.
type Actor struct {
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// SystemName is the actor name recorded for automated actions.
const SystemName = "System"

// System is the actor for automated classification.
var System = Actor{Name: SystemName}

// IsSystem reports whether a is the automated actor.
func (a Actor) IsSystem() bool {
	return a.Name == SystemName && a.Role == ""
}

// Can reports whether a may perform action. The system actor holds no role
// and may perform no human action.
func (a Actor) Can(action Action) bool {
	return Can(a.Role, action)
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor on ctx, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
