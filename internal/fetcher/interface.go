package fetcher

import "context"

// Service defines the interface for fetching raw dataset payloads from the upstream API
// External packages should use this interface, not the concrete implementations
type Service interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}
