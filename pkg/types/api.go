package types

// LoginRequest is the POST /login payload.
type LoginRequest struct {
	// example: devuser@jlabs.test
	Email string `json:"email" example:"devuser@jlabs.test"`
	// example: TestPass123!
	Password string `json:"password" example:"TestPass123!"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	// example: Login successful
	Message string `json:"message" example:"Login successful"`
	// Placeholder token; not a signed credential.
	// example: dummy-token
	Token string `json:"token" example:"dummy-token"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message shown to clients.
	// example: Invalid credentials
	Message string `json:"message" example:"Invalid credentials"`
	// Internal detail; only populated in development mode.
	Error string `json:"error,omitempty"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	// example: API is running
	Message string `json:"message" example:"API is running"`
	// example: production
	Environment string `json:"environment" example:"production"`
	// Coarse store state kept for existing clients: connected or disconnected.
	// example: disconnected
	MongoStatus string `json:"mongoStatus" example:"disconnected"`
	// Detailed connection manager status.
	Store StoreStatus `json:"store"`
}
