// Package server provides HTTP routing, middleware, and status endpoints for the curation service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
// The status server exposes the run history and a curation trigger:
//   - GET /health reports service liveness
//   - GET /runs lists recorded curation runs (period and limit query parameters)
//   - GET /runs/latest returns the most recent run, optionally per period
//   - POST /curate runs the curation pipeline and returns the playlist
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
