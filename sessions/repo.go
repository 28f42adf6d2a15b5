package sessions

// Repo loads and stores the session record.
type Repo interface {
	// Load returns the stored session, or an empty one when none was stored yet.
	Load() (*State, error)
	// Save replaces the stored session.
	Save(state *State) error
}
