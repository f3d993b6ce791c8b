package gateway

// Gateway defines the interface for campaign-facing transports (HTTP, CLI, etc.)
type Gateway interface {
	// Start begins serving requests and blocks until Stop
	Start() error
	// Stop gracefully shuts down the gateway
	Stop() error
}
