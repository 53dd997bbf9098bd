package upstream

import "context"

type credentialsKey struct{}

// Credentials are the caller's session headers, forwarded unchanged to the
// business API
type Credentials struct {
	Cookie        string
	Authorization string
}

// WithCredentials adds the caller's session headers to ctx
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom extracts session headers from ctx
func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}
