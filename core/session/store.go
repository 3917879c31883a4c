package session

// Store is the durable holder of the current Session; pure storage, no
// policy. Set and Clear replace or remove the whole record (token, user,
// role) atomically; a partial write or partial clear is a correctness bug.
//
// The Manager is the only writer; every consumer observes writes immediately
// through the single shared instance.
type Store interface {
	Set(sess Session) error
	// Get returns the current Session, or core.ErrNotFound when absent.
	Get() (Session, error)
	Clear() error
}
