package vsfs

// FormatOption configures Format. Modeled on the teacher's
// WriterOption/Option functional-option pattern.
type FormatOption func(*formatConfig) error

type formatConfig struct {
	// reserved for future growth (e.g. a volume label); currently format
	// has no tunables beyond the required `m` argument, but the option
	// shape is kept so adding one doesn't change Format's signature.
}

// MountOption configures Mount.
type MountOption func(*mountConfig) error

type mountConfig struct {
	lock bool
}

// WithLock causes Mount to take an advisory exclusive lock (via flock on
// platforms that support it, see lock_unix.go/lock_other.go) on the host
// container for the lifetime of the mount, turning the "undefined behavior
// under concurrent mount" of spec.md §5 into a fast failure for a second
// mounter. It is off by default to keep Mount's behavior identical to the
// single-process model spec.md describes unless explicitly requested.
func WithLock() MountOption {
	return func(c *mountConfig) error {
		c.lock = true
		return nil
	}
}
