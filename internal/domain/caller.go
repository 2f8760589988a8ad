package domain

// Caller is the identity the hosting platform authenticated for an invocation.
// The zero value is an unauthenticated caller.
type Caller struct {
	UID string
}

// Authenticated reports whether the platform supplied an identity.
func (c Caller) Authenticated() bool { return c.UID != "" }
