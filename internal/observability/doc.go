// Package observability builds the zap logger shared by the client, the
// request pipeline and the development API, and attaches request IDs taken
// from the context.
package observability
