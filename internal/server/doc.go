// Package server provides HTTP routing, middleware, and the recognition API
// handlers for the web surface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
//
// # API Handlers
//
// [API] implements the [Handler] interface and serves the pipeline surface:
// a health check, the /recognize pipeline entry point, and the library
// endpoints (/save_track, /remove_track, /analyze_vibe). Admission control
// runs inside the /recognize handler before any work starts, keyed by the
// forwarded client address.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib
// handler interface and adds routes, allowing handlers to register multiple
// routes to encapsulate route definitions within the implementation.
package server
