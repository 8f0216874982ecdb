package store

import (
	"bytes"
	"context"
	"hash/fnv"
	"sync"
	"time"

	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	"sendgate/pkg/platform/sentinel"
)

// numShards spreads recipients across independently locked maps so approvals
// for different recipients never contend.
const numShards = 64

type shard struct {
	mu      sync.RWMutex
	records map[id.RecipientID]*models.RecipientIdentity
}

// InMemoryStore keeps one identity record per recipient. Every mutation of a
// recipient happens under that recipient's shard lock, so approve is atomic
// per recipient+key.
type InMemoryStore struct {
	shards [numShards]shard
}

func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{}
	for i := range s.shards {
		s.shards[i].records = make(map[id.RecipientID]*models.RecipientIdentity)
	}
	return s
}

func (s *InMemoryStore) shardFor(recipientID id.RecipientID) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipientID))
	return &s.shards[h.Sum32()%numShards]
}

// Put replaces a recipient's record verbatim. Used to seed fixtures.
func (s *InMemoryStore) Put(record *models.RecipientIdentity) {
	sh := s.shardFor(record.RecipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.records[record.RecipientID] = cloneIdentity(record)
}

func (s *InMemoryStore) Get(_ context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	sh := s.shardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return cloneIdentity(sh.records[recipientID]), nil
}

// Observe records the key currently presented by a recipient. The first key
// seen for a recipient is trusted on first use; a different key supersedes the
// stored record with both approval levels cleared.
func (s *InMemoryStore) Observe(_ context.Context, recipientID id.RecipientID, key []byte, now time.Time) (*models.RecipientIdentity, bool, error) {
	sh := s.shardFor(recipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.records[recipientID]
	if ok && bytes.Equal(current.IdentityKey, key) {
		return cloneIdentity(current), false, nil
	}
	record := &models.RecipientIdentity{
		RecipientID:         recipientID,
		IdentityKey:         bytes.Clone(key),
		FirstSeenAt:         now,
		ApprovedBlocking:    !ok,
		ApprovedNonBlocking: !ok,
	}
	sh.records[recipientID] = record
	return cloneIdentity(record), ok, nil
}

func (s *InMemoryStore) BlockingIdentity(_ context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	sh := s.shardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	record := sh.records[recipientID]
	if !record.IsBlocking() {
		return nil, nil
	}
	return cloneIdentity(record), nil
}

func (s *InMemoryStore) BlockingIdentities(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.RecipientIdentity, error) {
	var result []*models.RecipientIdentity
	for _, recipientID := range recipientIDs {
		record, err := s.BlockingIdentity(ctx, recipientID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			result = append(result, record)
		}
	}
	return result, nil
}

// Approve raises the approval levels of the recipient's current key. Flags
// only ever move from false to true, so repeating an approval is a no-op.
func (s *InMemoryStore) Approve(_ context.Context, recipientID id.RecipientID, key []byte, blocking, nonBlocking bool) error {
	sh := s.shardFor(recipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	record, ok := sh.records[recipientID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !bytes.Equal(record.IdentityKey, key) {
		return sentinel.ErrConflict
	}
	record.ApprovedBlocking = record.ApprovedBlocking || blocking
	record.ApprovedNonBlocking = record.ApprovedNonBlocking || nonBlocking
	return nil
}

// Len returns the number of recipients with a record.
func (s *InMemoryStore) Len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		n += len(s.shards[i].records)
		s.shards[i].mu.RUnlock()
	}
	return n
}

func cloneIdentity(r *models.RecipientIdentity) *models.RecipientIdentity {
	if r == nil {
		return nil
	}
	c := *r
	c.IdentityKey = bytes.Clone(r.IdentityKey)
	return &c
}
