package llm

import "fmt"

// TransportError is a network-level failure reaching the provider (timeout,
// connection refused). It is never retried by the constraint orchestrator.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError is a non-2xx response from the provider. Status carries the
// upstream status code so handlers can propagate it.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm request failed with status %d", e.Status)
}
