//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sendgate/internal/identity/store"
	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	"sendgate/pkg/testutil/containers"
)

// interleavingBackend runs afterRead once, between the backend read of a
// cache fill and the fill's write.
type interleavingBackend struct {
	*store.InMemoryStore
	afterRead func()
}

func (b *interleavingBackend) BlockingIdentity(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	record, err := b.InMemoryStore.BlockingIdentity(ctx, recipientID)
	if hook := b.afterRead; hook != nil {
		b.afterRead = nil
		hook()
	}
	return record, err
}

type CachedStoreSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backend *store.InMemoryStore
	store   *store.CachedStore
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backend = store.NewInMemoryStore()
	s.store = store.NewCached(s.backend, s.redis.Client, store.WithCacheTTL(time.Minute))
}

func (s *CachedStoreSuite) TestNegativeAnswersAreCached() {
	ctx := context.Background()

	record, err := s.store.BlockingIdentity(ctx, "alice")
	s.Require().NoError(err)
	s.Nil(record)

	exists, err := s.redis.Client.Exists(ctx, "idgate:blocking:alice").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}

func (s *CachedStoreSuite) TestHitServesBlockingRecord() {
	ctx := context.Background()
	s.backend.Put(&models.RecipientIdentity{RecipientID: "bob", IdentityKey: []byte("k2")})

	_, err := s.store.BlockingIdentity(ctx, "bob")
	s.Require().NoError(err)

	record, err := s.store.BlockingIdentity(ctx, "bob")
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Equal([]byte("k2"), record.IdentityKey)
	s.False(record.ApprovedBlocking)
}

func (s *CachedStoreSuite) TestApproveInvalidatesCachedAnswer() {
	ctx := context.Background()
	s.backend.Put(&models.RecipientIdentity{RecipientID: "carol", IdentityKey: []byte("k")})

	record, err := s.store.BlockingIdentity(ctx, "carol")
	s.Require().NoError(err)
	s.Require().NotNil(record)

	s.Require().NoError(s.store.Approve(ctx, "carol", []byte("k"), true, true))

	record, err = s.store.BlockingIdentity(ctx, "carol")
	s.Require().NoError(err)
	s.Nil(record)
}

func (s *CachedStoreSuite) TestObserveInvalidatesCachedAnswer() {
	ctx := context.Background()
	now := time.Now()
	_, _, err := s.store.Observe(ctx, "dave", []byte("k1"), now)
	s.Require().NoError(err)

	record, err := s.store.BlockingIdentity(ctx, "dave")
	s.Require().NoError(err)
	s.Nil(record)

	_, _, err = s.store.Observe(ctx, "dave", []byte("k2"), now)
	s.Require().NoError(err)

	record, err = s.store.BlockingIdentity(ctx, "dave")
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Equal([]byte("k2"), record.IdentityKey)
}

func (s *CachedStoreSuite) TestBatchMixesHitsAndMisses() {
	ctx := context.Background()
	s.backend.Put(&models.RecipientIdentity{RecipientID: "r1", IdentityKey: []byte("a")})
	s.backend.Put(&models.RecipientIdentity{RecipientID: "r3", IdentityKey: []byte("c")})

	_, err := s.store.BlockingIdentity(ctx, "r3")
	s.Require().NoError(err)

	records, err := s.store.BlockingIdentities(ctx, []id.RecipientID{"r3", "r2", "r1"})
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(id.RecipientID("r3"), records[0].RecipientID)
	s.Equal(id.RecipientID("r1"), records[1].RecipientID)
}

func (s *CachedStoreSuite) TestSupersedeDuringFillIsNotMaskedByStaleAnswer() {
	ctx := context.Background()
	backend := &interleavingBackend{InMemoryStore: store.NewInMemoryStore()}
	cached := store.NewCached(backend, s.redis.Client, store.WithCacheTTL(time.Minute))

	_, _, err := cached.Observe(ctx, "bob", []byte("k1"), time.Now())
	s.Require().NoError(err)

	backend.afterRead = func() {
		_, superseded, err := cached.Observe(ctx, "bob", []byte("k2"), time.Now())
		s.Require().NoError(err)
		s.Require().True(superseded)
	}

	record, err := cached.BlockingIdentity(ctx, "bob")
	s.Require().NoError(err)
	s.Nil(record, "the read that raced the supersede saw the trusted key")

	exists, err := s.redis.Client.Exists(ctx, "idgate:blocking:bob").Result()
	s.Require().NoError(err)
	s.Equal(int64(0), exists, "the stale answer must not be cached")

	record, err = cached.BlockingIdentity(ctx, "bob")
	s.Require().NoError(err)
	s.Require().NotNil(record, "a superseded key must block")
	s.Equal([]byte("k2"), record.IdentityKey)
}

func (s *CachedStoreSuite) TestFillAfterInvalidationIsCached() {
	ctx := context.Background()
	_, _, err := s.store.Observe(ctx, "erin", []byte("k1"), time.Now())
	s.Require().NoError(err)

	record, err := s.store.BlockingIdentity(ctx, "erin")
	s.Require().NoError(err)
	s.Nil(record)

	exists, err := s.redis.Client.Exists(ctx, "idgate:blocking:erin").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}
