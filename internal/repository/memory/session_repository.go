package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionRecord tracks one live relay session. Owned by exactly one relay
// for the connection's lifetime.
type SessionRecord struct {
	ID          string
	ConnectedAt time.Time
}

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions expire after 1 hour of inactivity; expired items are purged
	// every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *SessionRecord) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*SessionRecord, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*SessionRecord), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
