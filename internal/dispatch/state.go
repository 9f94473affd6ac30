package dispatch

import (
	"sync"

	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/calendar"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

// conversationState is the per-conversation dialog memory outside the
// search session: the place under discussion and a deletion awaiting
// a yes/no answer.
type conversationState struct {
	selectedPlace   *place.Record
	pendingDeletion *calendar.PendingDeletion
}

type stateRegistry struct {
	mu     sync.Mutex
	states map[string]*conversationState
}

func newStateRegistry() *stateRegistry {
	return &stateRegistry{states: make(map[string]*conversationState)}
}

func (r *stateRegistry) get(conversationID string) *conversationState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[conversationID]
	if !ok {
		state = &conversationState{}
		r.states[conversationID] = state
	}
	return state
}

func (r *stateRegistry) drop(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, conversationID)
}
