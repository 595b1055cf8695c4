package auth

import "context"

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type UserContext struct {
	UserID string
	Role   string
}

type ctxKey struct{}

// WithUser attaches the acting user to the context. The presentation layer
// calls this once per session; movements and sales are stamped from it and
// the pull engine filters the snapshot by Role.
func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func FromContext(ctx context.Context) UserContext {
	if u, ok := ctx.Value(ctxKey{}).(UserContext); ok {
		return u
	}
	return UserContext{}
}
