// Package handlers implements the HTTP handlers of the storefront BFF:
// probes on plain echo routes, and the catalog, cart and contact operations
// registered with huma.
package handlers

// Backend states reported by the readiness probe.
const (
	backendReachable   = "reachable"
	backendUnreachable = "unreachable"
)

// StatusResponse is the body of the liveness and readiness probes. Backend is
// only set by /readyz.
type StatusResponse struct {
	Status  string `json:"status"            example:"ready"`
	Backend string `json:"backend,omitempty" example:"reachable"`
}
