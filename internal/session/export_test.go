package session

// Export internal state mutation for testing

// ForcePartner overwrites user's partner without touching the partner's side.
func (r *Registry) ForcePartner(user, partner int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[user] = &session{state: Chatting, partner: partner}
}
