// internal/core/ports/database.go
package ports

import "context"

// HealthChecker is implemented by backing stores that can report liveness
// to the health endpoints.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
