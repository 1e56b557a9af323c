package domain

// Identity is the decoded token claim set attached to a request after
// successful authentication. It is threaded explicitly through the call
// chain; nothing below the middleware reads ambient request state.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Owns reports whether the identity is the owner of the resource with the
// given id.
func (i Identity) Owns(resourceID string) bool {
	return i.ID != "" && i.ID == resourceID
}
