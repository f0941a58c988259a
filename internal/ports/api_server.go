package ports

// ApiServer defines the interface for the service's external surface
type ApiServer interface {
	// Start starts serving requests
	Start() error

	// Stop drains in-flight requests and stops serving
	Stop() error
}
