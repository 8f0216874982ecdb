package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "sendgate/pkg/platform/audit"
	"sendgate/pkg/platform/audit/store/memory"
)

type failingStore struct{ err error }

func (f failingStore) Append(context.Context, audit.Event) error { return f.err }

func TestFanout_AppendsToEveryStore(t *testing.T) {
	first := memory.NewInMemoryStore()
	second := memory.NewInMemoryStore()
	boom := errors.New("broker down")

	fanout := audit.Fanout{first, failingStore{err: boom}, nil, second}
	err := fanout.Append(context.Background(), audit.Event{
		RecipientID: "bob",
		Action:      string(audit.EventIdentityApproved),
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len(), "a failing store must not short-circuit later stores")
}

func TestFanout_NoStores(t *testing.T) {
	assert.NoError(t, audit.Fanout{}.Append(context.Background(), audit.Event{Action: "x"}))
}

func TestAuditEvent_Category(t *testing.T) {
	tests := []struct {
		event audit.AuditEvent
		want  audit.EventCategory
	}{
		{audit.EventIdentityApproved, audit.CategoryCompliance},
		{audit.EventSafetyNumberViewed, audit.CategoryCompliance},
		{audit.EventIdentitySuperseded, audit.CategorySecurity},
		{audit.EventIdentityApprovalFailed, audit.CategorySecurity},
		{audit.EventGateRaised, audit.CategoryOperations},
		{audit.AuditEvent("unknown"), audit.CategoryOperations},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Category())
		})
	}
}
