package health

import "context"

// LibraryPinger checks that the library snapshot is loaded.
type LibraryPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
