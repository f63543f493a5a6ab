package auth

import (
	"sync"

	"github.com/iudanet/invtracker/pkg/api"
)

// Status is the coarse auth state.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. It is a value: holders never see later
// changes through it.
type State struct {
	User            *api.User
	ErrorMessage    string
	Status          Status
	IsAuthenticated bool
	IsLoading       bool
	// Expired is set when the server stopped accepting the stored credential.
	Expired bool
}

func unauthenticated(message string) State {
	return State{Status: StatusUnauthenticated, ErrorMessage: message}
}

func expired() State {
	return State{Status: StatusUnauthenticated, ErrorMessage: SessionExpiredMessage, Expired: true}
}

// authenticating marks a request in flight. At startup with a stored token
// the session counts as authenticated until the identity fetch fails.
func authenticating(optimistic bool) State {
	return State{Status: StatusAuthenticating, IsLoading: true, IsAuthenticated: optimistic}
}

func authenticated(user api.User) State {
	return State{Status: StatusAuthenticated, IsAuthenticated: true, User: &user}
}

func failed(message string) State {
	return State{Status: StatusError, ErrorMessage: message}
}

// StateHolder broadcasts State to any number of readers. Only this package
// writes to it.
type StateHolder struct {
	subs   map[int]chan State
	state  State
	nextID int
	mu     sync.Mutex
}

// NewStateHolder returns a holder in the unauthenticated state.
func NewStateHolder() *StateHolder {
	return &StateHolder{
		subs:  make(map[int]chan State),
		state: unauthenticated(""),
	}
}

// Current returns the latest state.
func (h *StateHolder) Current() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe returns a channel that yields the current state immediately and
// then every change. A slow reader skips intermediate states and always
// receives the newest one. The returned func unsubscribes and closes the
// channel.
func (h *StateHolder) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	ch <- h.state
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
}

func (h *StateHolder) set(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = s
	for _, ch := range h.subs {
		// Выбрасываем непрочитанное значение, чтобы не блокировать writer
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
