package repofakes

import (
	"sync"

	"github.com/jrsteele09/go-connectedcar/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps a copy of the last saved session in memory.
type FakeSessionRepo struct {
	state *sessions.State
	saves int
	lock  sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Load() (*sessions.State, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.state == nil {
		return &sessions.State{}, nil
	}
	return clone(r.state), nil
}

func (r *FakeSessionRepo) Save(state *sessions.State) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state = clone(state)
	r.saves++
	return nil
}

// Saves returns how many times Save was called.
func (r *FakeSessionRepo) Saves() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}

// Last returns the last saved session, or nil.
func (r *FakeSessionRepo) Last() *sessions.State {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.state == nil {
		return nil
	}
	return clone(r.state)
}

func clone(state *sessions.State) *sessions.State {
	c := *state
	if state.API.TokenExpires != nil {
		expires := *state.API.TokenExpires
		c.API.TokenExpires = &expires
	}
	return &c
}
