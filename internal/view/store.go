package view

import "sync"

// Store owns the single mutable view state. Every transition is a whole-value
// replace under the lock; readers get a consistent snapshot.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: NewLoading()}
}

func (st *Store) Get() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

func (st *Store) Set(s State) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = s
}
