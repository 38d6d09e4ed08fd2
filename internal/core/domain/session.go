package domain

// Session binds an opaque bearer token to the username and role that were
// authenticated when it was issued. Sessions are never mutated.
type Session struct {
	Token    string `json:"-"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Sessions maps bearer tokens to their session.
type Sessions map[string]Session

// Lookup returns the session for token, filling in its Token field.
func (s Sessions) Lookup(token string) (Session, bool) {
	sess, ok := s[token]
	if !ok {
		return Session{}, false
	}
	sess.Token = token
	return sess, true
}

// FindBound returns the live session bound to (username, role), if any.
func (s Sessions) FindBound(username string, role Role) (Session, bool) {
	for token, sess := range s {
		if sess.Username == username && sess.Role == role {
			sess.Token = token
			return sess, true
		}
	}
	return Session{}, false
}
