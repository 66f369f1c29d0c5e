// Package session tracks which users are waiting for a partner and who is
// currently paired with whom.
package session

import (
	"container/list"
	"sync"
)

// State is the matchmaking state of a single user.
type State int

// Matchmaking states.
const (
	Idle State = iota
	Waiting
	Chatting
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Waiting:
		return "waiting"
	case Chatting:
		return "chatting"
	default:
		return "unknown"
	}
}

// Outcome describes what a chat request did.
type Outcome int

// Chat request outcomes.
const (
	// Queued means the user was appended to the waiting list.
	Queued Outcome = iota + 1
	// Paired means the user was matched with the oldest waiting user.
	Paired
	// AlreadyWaiting means the user was already on the waiting list.
	AlreadyWaiting
	// AlreadyChatting means the user already has a partner.
	AlreadyChatting
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Queued:
		return "queued"
	case Paired:
		return "paired"
	case AlreadyWaiting:
		return "already_waiting"
	case AlreadyChatting:
		return "already_chatting"
	default:
		return "unknown"
	}
}

// Request is the result of RequestChat.
type Request struct {
	Outcome Outcome
	// Partner is set for Paired and AlreadyChatting.
	Partner int64
}

// Ended is the result of EndChat.
type Ended struct {
	// Previous is the state the user was in before the call.
	Previous State
	// Partner is set when Previous is Chatting.
	Partner int64
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Waiting  int
	Chatting int
}

// session is one user's entry. Idle users have no entry.
type session struct {
	waitElem *list.Element // set only while waiting
	partner  int64         // set only while chatting
	state    State
}

// Registry owns every session. All transitions happen under one lock so that
// pairing and unpairing are atomic with respect to each other.
type Registry struct {
	sessions map[int64]*session
	waiting  *list.List // oldest first, values are int64 user IDs
	mu       sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*session),
		waiting:  list.New(),
	}
}

// RequestChat pairs user with the oldest waiting user, or queues user if
// nobody is waiting.
func (r *Registry) RequestChat(user int64) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[user]; ok {
		switch sess.state {
		case Chatting:
			if err := r.checkPairLocked(user, sess); err != nil {
				return Request{}, err
			}
			return Request{Outcome: AlreadyChatting, Partner: sess.partner}, nil
		case Waiting:
			if sess.waitElem == nil {
				return Request{}, newConsistencyError(user, "waiting session is not on the waiting list")
			}
			return Request{Outcome: AlreadyWaiting}, nil
		default:
			return Request{}, newConsistencyError(user, "stored session has state "+sess.state.String())
		}
	}

	front := r.waiting.Front()
	if front == nil {
		r.sessions[user] = &session{
			state:    Waiting,
			waitElem: r.waiting.PushBack(user),
		}
		return Request{Outcome: Queued}, nil
	}

	partner, ok := front.Value.(int64)
	if !ok {
		return Request{}, newConsistencyError(user, "waiting list holds a non-user value")
	}
	partnerSess, exists := r.sessions[partner]
	if !exists || partnerSess.state != Waiting || partnerSess.waitElem != front {
		return Request{}, newConsistencyError(partner, "head of waiting list is not waiting")
	}

	r.waiting.Remove(front)
	partnerSess.waitElem = nil
	partnerSess.state = Chatting
	partnerSess.partner = user
	r.sessions[user] = &session{state: Chatting, partner: partner}

	return Request{Outcome: Paired, Partner: partner}, nil
}

// EndChat returns user, and their partner if any, to Idle.
func (r *Registry) EndChat(user int64) (Ended, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[user]
	if !ok {
		return Ended{Previous: Idle}, nil
	}

	switch sess.state {
	case Waiting:
		if sess.waitElem != nil {
			r.waiting.Remove(sess.waitElem)
		}
		delete(r.sessions, user)
		return Ended{Previous: Waiting}, nil
	case Chatting:
		if err := r.checkPairLocked(user, sess); err != nil {
			return Ended{}, err
		}
		partner := sess.partner
		delete(r.sessions, user)
		delete(r.sessions, partner)
		return Ended{Previous: Chatting, Partner: partner}, nil
	default:
		return Ended{}, newConsistencyError(user, "stored session has state "+sess.state.String())
	}
}

// Partner returns the current partner of user. It returns ErrNotChatting
// for idle and waiting users and a *ConsistencyError if the pairing is not
// mirrored.
func (r *Registry) Partner(user int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[user]
	if !ok || sess.state != Chatting {
		return 0, ErrNotChatting
	}
	if err := r.checkPairLocked(user, sess); err != nil {
		return 0, err
	}
	return sess.partner, nil
}

// State returns the matchmaking state of user.
func (r *Registry) State(user int64) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[user]; ok {
		return sess.state
	}
	return Idle
}

// Stats returns the number of waiting and chatting users.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st Stats
	for _, sess := range r.sessions {
		switch sess.state {
		case Waiting:
			st.Waiting++
		case Chatting:
			st.Chatting++
		}
	}
	return st
}

// checkPairLocked verifies that a chatting session is mirrored by its partner.
// Caller must hold r.mu.
func (r *Registry) checkPairLocked(user int64, sess *session) error {
	if sess.partner == user {
		return newConsistencyError(user, "user is paired with themselves")
	}
	other, ok := r.sessions[sess.partner]
	if !ok || other.state != Chatting || other.partner != user {
		return newConsistencyError(user, "partner reference is one-sided")
	}
	return nil
}
