// Package middleware contains HTTP middleware for the status API.
//
// The status server is a debug surface; the middleware here keeps it
// traceable and, when configured, private.
//
// # Components
//
//   - requestid: assigns every request an ID (inbound X-Request-Id is kept,
//     otherwise a UUID is minted), stored in the request locals and echoed
//     in the response so log lines and responses can be correlated.
//   - auth: constant-time API key validation. Left unconfigured, the API is
//     open; with a key set, requests must carry it in X-Api-Key.
//
// Both are registered globally in server.New, request IDs first so auth
// failures are traceable too.
package middleware
