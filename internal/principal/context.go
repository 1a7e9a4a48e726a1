package principal

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context. A nil
// principal marks an anonymous requester.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext extracts the principal from context, nil when anonymous.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
