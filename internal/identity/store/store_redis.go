package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	"sendgate/pkg/platform/circuit"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sendgate_identity_cache_lookups_total",
	Help: "Blocking identity cache lookups by result",
}, []string{"result"}) // result: "hit", "miss", "error", "bypass"

var cacheFills = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sendgate_identity_cache_fills_total",
	Help: "Blocking identity cache fills by result",
}, []string{"result"}) // result: "stored", "stale", "skipped", "error"

const (
	// Redis key prefix for cached blocking-identity answers
	blockingKeyPrefix = "idgate:blocking:"
	// Redis key prefix for per-recipient invalidation counters
	generationKeyPrefix = "idgate:gen:"

	defaultCacheTTL = 30 * time.Second
	// generationTTL must outlive any fill in flight.
	generationTTL = 24 * time.Hour
)

// errStaleFill aborts a fill whose recipient was invalidated after the
// generation was read.
var errStaleFill = errors.New("identity cache fill is stale")

// Backend is the authoritative identity store behind the cache.
type Backend interface {
	Get(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error)
	Observe(ctx context.Context, recipientID id.RecipientID, key []byte, now time.Time) (*models.RecipientIdentity, bool, error)
	BlockingIdentity(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error)
	BlockingIdentities(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.RecipientIdentity, error)
	Approve(ctx context.Context, recipientID id.RecipientID, key []byte, blocking, nonBlocking bool) error
}

// CachedStore answers blocking-identity queries from Redis and falls back to
// the backend on miss. Negative answers are cached too, since most sends have
// nothing to confirm. Every mutation goes to the backend first and then drops
// the cached answer. Redis failures degrade to backend reads, never to "clear".
// A run of Redis failures opens a breaker and reads go straight to the backend
// until probes succeed again.
//
// A fill only writes if the recipient's generation counter is unchanged since
// before the backend read, so an answer read ahead of a concurrent Observe or
// Approve is never cached. Recipients whose invalidation failed are read from
// the backend by this process until one cache TTL has passed.
type CachedStore struct {
	backend Backend
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
	now     func() time.Time

	mu        sync.Mutex
	unsettled map[id.RecipientID]time.Time
}

// CachedStoreOption configures a CachedStore instance.
type CachedStoreOption func(*CachedStore)

// WithCacheTTL sets how long a cached answer is trusted.
func WithCacheTTL(ttl time.Duration) CachedStoreOption {
	return func(s *CachedStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(logger *slog.Logger) CachedStoreOption {
	return func(s *CachedStore) {
		s.logger = logger
	}
}

// WithCacheBreaker replaces the default circuit breaker.
func WithCacheBreaker(b *circuit.Breaker) CachedStoreOption {
	return func(s *CachedStore) {
		if b != nil {
			s.breaker = b
		}
	}
}

// NewCached wraps backend with a Redis read-through cache.
func NewCached(backend Backend, client *redis.Client, opts ...CachedStoreOption) *CachedStore {
	s := &CachedStore{
		backend: backend,
		client:  client,
		ttl:     defaultCacheTTL,
		breaker: circuit.New("identity-cache"),
		now:     time.Now,

		unsettled: make(map[id.RecipientID]time.Time),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type cacheEntry struct {
	Blocking    bool      `json:"blocking"`
	IdentityKey []byte    `json:"identity_key,omitempty"`
	FirstSeenAt time.Time `json:"first_seen_at,omitempty"`
	NonBlocking bool      `json:"approved_non_blocking,omitempty"`
}

func cacheKey(recipientID id.RecipientID) string {
	return blockingKeyPrefix + recipientID.String()
}

func generationKey(recipientID id.RecipientID) string {
	return generationKeyPrefix + recipientID.String()
}

func (s *CachedStore) Get(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	return s.backend.Get(ctx, recipientID)
}

func (s *CachedStore) Observe(ctx context.Context, recipientID id.RecipientID, key []byte, now time.Time) (*models.RecipientIdentity, bool, error) {
	record, superseded, err := s.backend.Observe(ctx, recipientID, key, now)
	if err != nil {
		return nil, false, err
	}
	s.invalidate(ctx, recipientID)
	return record, superseded, nil
}

func (s *CachedStore) Approve(ctx context.Context, recipientID id.RecipientID, key []byte, blocking, nonBlocking bool) error {
	if err := s.backend.Approve(ctx, recipientID, key, blocking, nonBlocking); err != nil {
		return err
	}
	s.invalidate(ctx, recipientID)
	return nil
}

func (s *CachedStore) BlockingIdentity(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	if s.isUnsettled(recipientID) {
		cacheLookups.WithLabelValues("bypass").Inc()
		return s.backend.BlockingIdentity(ctx, recipientID)
	}
	if !s.breaker.Allow() {
		cacheLookups.WithLabelValues("bypass").Inc()
		return s.backend.BlockingIdentity(ctx, recipientID)
	}
	raw, err := s.client.Get(ctx, cacheKey(recipientID)).Bytes()
	s.record(ctx, err)
	switch {
	case err == nil:
		if record, ok := s.decode(ctx, recipientID, raw); ok {
			cacheLookups.WithLabelValues("hit").Inc()
			return record, nil
		}
	case errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues("miss").Inc()
	default:
		cacheLookups.WithLabelValues("error").Inc()
		s.warn(ctx, "identity cache read failed", recipientID, err)
	}
	return s.fill(ctx, recipientID)
}

// BlockingIdentities resolves hits with a single MGET and fills misses from the
// backend one recipient at a time. Results keep input order.
func (s *CachedStore) BlockingIdentities(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.RecipientIdentity, error) {
	if len(recipientIDs) == 0 {
		return nil, nil
	}
	if !s.breaker.Allow() {
		cacheLookups.WithLabelValues("bypass").Add(float64(len(recipientIDs)))
		return s.backend.BlockingIdentities(ctx, recipientIDs)
	}
	keys := make([]string, len(recipientIDs))
	for i, r := range recipientIDs {
		keys[i] = cacheKey(r)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	s.record(ctx, err)
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		s.warn(ctx, "identity cache batch read failed", "", err)
		return s.backend.BlockingIdentities(ctx, recipientIDs)
	}

	var result []*models.RecipientIdentity
	for i, recipientID := range recipientIDs {
		if s.isUnsettled(recipientID) {
			cacheLookups.WithLabelValues("bypass").Inc()
			record, err := s.backend.BlockingIdentity(ctx, recipientID)
			if err != nil {
				return nil, err
			}
			if record != nil {
				result = append(result, record)
			}
			continue
		}
		if raw, ok := values[i].(string); ok {
			if record, ok := s.decode(ctx, recipientID, []byte(raw)); ok {
				cacheLookups.WithLabelValues("hit").Inc()
				if record != nil {
					result = append(result, record)
				}
				continue
			}
		}
		cacheLookups.WithLabelValues("miss").Inc()
		record, err := s.fill(ctx, recipientID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			result = append(result, record)
		}
	}
	return result, nil
}

func (s *CachedStore) fill(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	gen, genErr := s.generation(ctx, recipientID)
	record, err := s.backend.BlockingIdentity(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if genErr != nil || s.breaker.IsOpen() || s.isUnsettled(recipientID) {
		cacheFills.WithLabelValues("skipped").Inc()
		return record, nil
	}
	entry := cacheEntry{}
	if record != nil {
		entry = cacheEntry{
			Blocking:    true,
			IdentityKey: record.IdentityKey,
			FirstSeenAt: record.FirstSeenAt,
			NonBlocking: record.ApprovedNonBlocking,
		}
	}
	payload, err := json.Marshal(entry)
	if err == nil {
		err = s.storeIfCurrent(ctx, recipientID, gen, payload)
	}
	switch {
	case err == nil:
		cacheFills.WithLabelValues("stored").Inc()
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		cacheFills.WithLabelValues("stale").Inc()
		s.record(ctx, nil)
	default:
		cacheFills.WithLabelValues("error").Inc()
		s.record(ctx, err)
		s.warn(ctx, "identity cache write failed", recipientID, err)
	}
	return record, nil
}

// generation reads the recipient's invalidation counter. A missing counter
// reads as "".
func (s *CachedStore) generation(ctx context.Context, recipientID id.RecipientID) (string, error) {
	gen, err := s.client.Get(ctx, generationKey(recipientID)).Result()
	s.record(ctx, err)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

// storeIfCurrent writes payload only while the generation still equals gen.
// WATCH makes the write fail if an invalidation lands between the check and
// EXEC.
func (s *CachedStore) storeIfCurrent(ctx context.Context, recipientID id.RecipientID, gen string, payload []byte) error {
	genKey := generationKey(recipientID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(recipientID), payload, s.ttl)
			return nil
		})
		return err
	}, genKey)
}

func (s *CachedStore) decode(ctx context.Context, recipientID id.RecipientID, raw []byte) (*models.RecipientIdentity, bool) {
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.warn(ctx, "identity cache entry corrupt", recipientID, err)
		return nil, false
	}
	if !entry.Blocking {
		return nil, true
	}
	return &models.RecipientIdentity{
		RecipientID:         recipientID,
		IdentityKey:         entry.IdentityKey,
		FirstSeenAt:         entry.FirstSeenAt,
		ApprovedNonBlocking: entry.NonBlocking,
	}, true
}

// invalidate bumps the recipient's generation and drops the cached answer in
// one transaction. It is attempted even with the breaker open. When it fails
// the recipient is marked unsettled, so this process stops trusting the cache
// for it until any entry written before the change has expired.
func (s *CachedStore) invalidate(ctx context.Context, recipientID id.RecipientID) {
	genKey := generationKey(recipientID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, cacheKey(recipientID))
		return nil
	})
	s.record(ctx, err)
	if err != nil {
		s.markUnsettled(recipientID)
		s.warn(ctx, "identity cache invalidation failed", recipientID, err)
	}
}

func (s *CachedStore) markUnsettled(recipientID id.RecipientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsettled[recipientID] = s.now().Add(s.ttl)
}

func (s *CachedStore) isUnsettled(recipientID id.RecipientID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.unsettled[recipientID]
	if !ok {
		return false
	}
	if !s.now().Before(until) {
		delete(s.unsettled, recipientID)
		return false
	}
	return true
}

// record feeds a Redis call result to the breaker. redis.Nil is a miss, not a
// failure.
func (s *CachedStore) record(ctx context.Context, err error) {
	var change circuit.StateChange
	if err == nil || errors.Is(err, redis.Nil) {
		_, change = s.breaker.RecordSuccess()
	} else {
		_, change = s.breaker.RecordFailure()
	}
	if s.logger == nil {
		return
	}
	switch {
	case change.Opened:
		s.logger.WarnContext(ctx, "identity cache circuit opened, reading from backend", "breaker", s.breaker.Name())
	case change.Closed:
		s.logger.InfoContext(ctx, "identity cache circuit closed", "breaker", s.breaker.Name())
	}
}

func (s *CachedStore) warn(ctx context.Context, msg string, recipientID id.RecipientID, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, "recipient_id", recipientID.String(), "error", err)
}
