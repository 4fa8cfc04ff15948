// Package context carries request-scoped values such as the trace id and the
// verified caller identity.
package context

type contextKey string
