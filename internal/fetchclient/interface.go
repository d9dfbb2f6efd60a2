package fetchclient

import "context"

// Thunk is a deferred unit of work that retrieves data and may fail
type Thunk func(ctx context.Context) (interface{}, error)

// Service defines the interface for executing fetch operations with retries
// External packages should use this interface, not the concrete implementations
type Service interface {
	Execute(ctx context.Context, thunk Thunk) (interface{}, error)
}
