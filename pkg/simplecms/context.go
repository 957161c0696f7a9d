package simplecms

import "context"

type contextKey string

const actorContextKey contextKey = "simplecms.actor"

// WithActor returns a context carrying the acting user name. Transport
// layers that authenticate a request attach the identity here; operations
// that record authorship fall back to it when a request does not name an
// author explicitly.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorContextKey, username)
}

// ActorFromContext returns the acting user name attached to the context.
func ActorFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(actorContextKey).(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}
