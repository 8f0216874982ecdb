// Package contacts resolves recipient IDs to the display names a sender saved
// for them. A miss is not an error: callers fall back to the raw ID.
package contacts

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
)

const maxDisplayNameLength = 256

// NormalizeDisplayName trims a submitted name and validates it.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "display_name is required")
	}
	if !utf8.ValidString(name) || utf8.RuneCountInString(name) > maxDisplayNameLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "display_name is invalid")
	}
	return name, nil
}

// InMemoryDirectory keeps display names in a map.
type InMemoryDirectory struct {
	mu    sync.RWMutex
	names map[id.RecipientID]string
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{names: make(map[id.RecipientID]string)}
}

func (d *InMemoryDirectory) DisplayName(_ context.Context, recipientID id.RecipientID) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[recipientID]
	return name, ok, nil
}

func (d *InMemoryDirectory) Put(_ context.Context, recipientID id.RecipientID, name string) error {
	name, err := NormalizeDisplayName(name)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[recipientID] = name
	return nil
}
