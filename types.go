package authcore

// RegisterRequest carries the inputs for Service.Register. Role is optional
// and falls back to the configured default role.
//
// RegisterRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterRequest struct {
	Username string
	Password string
	Email    string
	Role     string
}

// UserInfo is the non-sensitive projection of a credential record returned by
// Service.User. It never carries hashes, salts, or key material.
type UserInfo struct {
	Username  string
	Role      string
	CreatedAt int64
}
