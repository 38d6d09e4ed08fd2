package ports

// SecretHasher produces and checks salted one-way hashes of account secrets.
type SecretHasher interface {
	Hash(secret string) (string, error)
	// Verify reports whether secret matches hash. A malformed hash is a mismatch.
	Verify(secret, hash string) bool
}
