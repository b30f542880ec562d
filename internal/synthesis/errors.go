package synthesis

import "fmt"

// ExternalServiceError reports a failed request to an external collaborator
// (in this package, always the generative model backend). It is the only
// error any engine operation returns: malformed model output never surfaces
// as an error, only transport failures do.
type ExternalServiceError struct {
	// Service names the failed collaborator (e.g. "llm").
	Service string

	// Err is the underlying transport or provider error.
	Err error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service request failed: %v", e.Service, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
