package auth

// Scopes granted to training clients.
const (
	ScopeTrainingRead  = "training:read"
	ScopeTrainingWrite = "training:write"
)
