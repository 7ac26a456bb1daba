package domain

// Session is the read-only view of the authenticated caller.
type Session struct {
	UserID        string
	Email         string
	Role          Role
	Authenticated bool
	Loading       bool
}

// Ready reports whether the session is settled and authenticated.
func (s *Session) Ready() bool {
	return s != nil && !s.Loading && s.Authenticated && s.UserID != ""
}
