// Package session tracks every active call. In-memory state is
// authoritative; when Redis is configured each turn's snapshot is
// mirrored there with a TTL, so a restarted instance can resume
// mid-call sessions exactly where they left off.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

const redisKeyPrefix = "ivr:session:"

// ErrTooManySessions is returned when the concurrent session cap is
// reached; the transport answers with the busy prompt.
var ErrTooManySessions = errors.New("maximum sessions reached")

type entry struct {
	mu   sync.Mutex
	sess *types.Session
}

// Manager owns the session map. Turns for one session are serialized by
// a per-session lock; different sessions proceed in parallel.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	redis       *redis.Client
	idleTimeout time.Duration
	maxSessions int
	log         zerolog.Logger
}

func NewManager(redisClient *redis.Client, idleTimeout time.Duration, maxSessions int, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*entry),
		redis:       redisClient,
		idleTimeout: idleTimeout,
		maxSessions: maxSessions,
		log:         log,
	}
}

// Connect dials Redis and returns nil when it is unavailable; the
// manager then runs memory-only, matching how the voice stack treats
// the cache as best-effort.
func Connect(ctx context.Context, addr, password string, log zerolog.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, sessions kept in memory only")
		return nil
	}
	return client
}

// Do runs fn with the session for id under the per-session lock,
// creating a fresh AwaitingLanguage session when the id is unknown or
// expired (a phone system must always be answerable). After fn returns,
// the snapshot is mirrored to Redis or, for terminal sessions, the
// session is reclaimed immediately.
func (m *Manager) Do(ctx context.Context, id string, now time.Time, fn func(sess *types.Session) error) error {
	ent, err := m.acquire(ctx, id, now)
	if err != nil {
		return err
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()

	if ent.sess.Expired(now, m.idleTimeout) {
		ent.sess = types.NewSession(id, now)
	}

	if err := fn(ent.sess); err != nil {
		return err
	}

	if ent.sess.Terminal() {
		m.remove(ctx, id, ent)
		return nil
	}
	m.persist(ctx, ent.sess)
	return nil
}

func (m *Manager) acquire(ctx context.Context, id string, now time.Time) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ent, ok := m.sessions[id]; ok {
		return ent, nil
	}

	sess := m.restore(ctx, id)
	if sess == nil {
		if len(m.sessions) >= m.maxSessions {
			return nil, ErrTooManySessions
		}
		sess = types.NewSession(id, now)
	}
	ent := &entry{sess: sess}
	m.sessions[id] = ent
	return ent, nil
}

// restore pulls a snapshot from Redis after an in-memory miss.
func (m *Manager) restore(ctx context.Context, id string) *types.Session {
	if m.redis == nil {
		return nil
	}
	data, err := m.redis.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.log.Warn().Err(err).Str("call_id", id).Msg("redis read failed")
		}
		return nil
	}
	sess, err := Unmarshal(data)
	if err != nil {
		m.log.Warn().Err(err).Str("call_id", id).Msg("discarding unreadable session snapshot")
		return nil
	}
	return sess
}

func (m *Manager) persist(ctx context.Context, sess *types.Session) {
	if m.redis == nil {
		return
	}
	data, err := Marshal(sess)
	if err != nil {
		m.log.Warn().Err(err).Str("call_id", sess.ID).Msg("session snapshot failed")
		return
	}
	if err := m.redis.Set(ctx, redisKeyPrefix+sess.ID, data, m.idleTimeout).Err(); err != nil {
		m.log.Warn().Err(err).Str("call_id", sess.ID).Msg("redis write failed")
	}
}

// remove drops the entry and its Redis mirror. The map value is
// compared against the entry being released: a turn finishing late must
// not delete a fresh entry created for the same call id in the
// meantime.
func (m *Manager) remove(ctx context.Context, id string, ent *entry) {
	m.mu.Lock()
	if cur, ok := m.sessions[id]; ok && cur == ent {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if m.redis != nil {
		if err := m.redis.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
			m.log.Warn().Err(err).Str("call_id", id).Msg("redis delete failed")
		}
	}
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired evicts idle sessions. Evicting an expired or terminal
// session is safe at any time: no component holds a reference across
// turns.
func (m *Manager) CleanupExpired(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var expired []string
	for id, ent := range m.sessions {
		// An entry whose lock is held has a turn in flight right now,
		// which makes it active; skip it instead of waiting. Reading the
		// session without the entry lock would race with that turn.
		if !ent.mu.TryLock() {
			continue
		}
		evict := ent.sess.Expired(now, m.idleTimeout) || ent.sess.Terminal()
		ent.mu.Unlock()
		if evict {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if m.redis != nil {
			m.redis.Del(ctx, redisKeyPrefix+id)
		}
	}
	if len(expired) > 0 {
		m.log.Info().Int("count", len(expired)).Msg("expired sessions evicted")
	}
	return len(expired)
}

// StartCleanupRoutine runs periodic eviction until the context ends.
func (m *Manager) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpired(ctx, time.Now())
		}
	}
}

// Shutdown drops all sessions and closes the Redis connection.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()
	if m.redis != nil {
		m.redis.Close()
	}
}
