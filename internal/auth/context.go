package auth

import "context"

const RoleAdmin = "admin"

type principalKey struct{}

type bearerKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// IsAdmin is true only for requests that carried a valid admin token.
func IsAdmin(ctx context.Context) bool {
	p, ok := PrincipalFrom(ctx)
	return ok && p.Role == RoleAdmin
}

// WithBearerCredential marks a request whose admin token arrived in the
// Authorization header, so proxies know to drop that header.
func WithBearerCredential(ctx context.Context) context.Context {
	return context.WithValue(ctx, bearerKey{}, true)
}

func BearerCredential(ctx context.Context) bool {
	v, _ := ctx.Value(bearerKey{}).(bool)
	return v
}
