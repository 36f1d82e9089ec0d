package ports

// PasswordHasher hashes credentials one way. Verify returns nil when plain
// matches hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}
