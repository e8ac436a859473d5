package interaction

import "sync"

// Registry tracks mounted sessions by (item, viewer) so a like toggle issued
// over the REST surface can go through the viewer's live session and reach
// their stream optimistically. Sessions for different items, or for the same
// item viewed by different users, are fully independent.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func sessionKey(itemID, viewerUID string) string {
	return itemID + "/" + viewerUID
}

// Put registers a mounted session, replacing any previous one for the pair
func (r *Registry) Put(itemID, viewerUID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionKey(itemID, viewerUID)] = s
}

// Get returns the mounted session for the pair, or nil
func (r *Registry) Get(itemID, viewerUID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[sessionKey(itemID, viewerUID)]
}

// Remove unregisters the session for the pair, but only if it is still the
// one passed in; a newer mount for the same pair is left untouched.
func (r *Registry) Remove(itemID, viewerUID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey(itemID, viewerUID)
	if r.sessions[key] == s {
		delete(r.sessions, key)
	}
}
