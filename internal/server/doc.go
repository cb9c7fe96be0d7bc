// Package server exposes the launcher over a small local JSON API.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] and its method-aware patterns ("GET /apps"). [Middleware]
// is applied in reverse order of registration, so the first added runs outermost.
//
// # Handlers
//
// A [Handler] serves every pattern returned by Routes and dispatches on [http.Request.Pattern].
// [LauncherHandler] serves app listings, favorites, lock state and the gated open action:
//
//	GET  /health
//	GET  /apps               visible apps (?all=true includes hidden)
//	GET  /favorites
//	GET  /lock
//	POST /apps/{pkg}/open    body: {"password": "..."}
//
// Errors are JSON objects with an "error" field. A wrong password is 401 and a spent unlock
// budget is 429.
package server
