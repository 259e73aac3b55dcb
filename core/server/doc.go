// Package server exposes the HTTP status API of the texture daemon.
//
// The API is a debug surface: it reports what the texture manager is doing
// without influencing it. The main application entry point owns the listen
// and shutdown lifecycle; this package assembles the Fiber app and its
// middleware chain.
//
// # Endpoints
//
//   - GET /healthz: liveness probe.
//   - GET /v1/stats: manager counters (entity totals per state, tracked
//     paths, converter business).
//   - GET /v1/textures: every registered texture with its sampler, pipeline
//     state and current dimensions.
//
// # Configuration
//
// The Config struct defines the HTTP port and the optional API key. When a
// key is configured every endpoint requires the X-Api-Key header.
package server
