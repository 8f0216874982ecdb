package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "sendgate/pkg/domain-errors"
)

// maxRecipientIDLength bounds opaque recipient identifiers (phone numbers,
// service IDs) accepted at API boundaries.
const maxRecipientIDLength = 128

// RecipientID is an opaque, stable identifier for a message recipient.
// Invariant: non-empty, valid UTF-8, no control characters, not padded.
//
// Usage: construct via ParseRecipientID at trust boundaries; direct casting
// bypasses validation and is reserved for stores reading already-validated rows.
type RecipientID string

// AccountID identifies the sending account on whose behalf a gate runs.
type AccountID string

// PromptID identifies a pending trust prompt.
type PromptID uuid.UUID

// ParseRecipientID constructs a RecipientID from external input.
//
// Errors: returns CodeInvalidInput for empty, padded, oversized, non-UTF-8 or
// control-character input.
func ParseRecipientID(s string) (RecipientID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "recipient id cannot be empty")
	}
	if len(s) > maxRecipientIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "recipient id too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "recipient id must be valid UTF-8")
	}
	if strings.TrimSpace(s) != s {
		return "", dErrors.New(dErrors.CodeInvalidInput, "recipient id must not be padded")
	}
	for _, r := range s {
		if unicode.IsControl(r) || r == '\u200b' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "recipient id contains invalid characters")
		}
	}
	return RecipientID(s), nil
}

// ParseRecipientIDs parses a batch, preserving order and duplicates.
func ParseRecipientIDs(values []string) ([]RecipientID, error) {
	if len(values) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one recipient id is required")
	}
	ids := make([]RecipientID, 0, len(values))
	for _, v := range values {
		id, err := ParseRecipientID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (id RecipientID) String() string { return string(id) }

// IsNil reports whether the identifier is empty.
func (id RecipientID) IsNil() bool { return id == "" }

// ParseAccountID validates a sending account identifier (token subject).
func ParseAccountID(s string) (AccountID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	return AccountID(s), nil
}

func (id AccountID) String() string { return string(id) }

// NewPromptID returns a fresh random prompt identifier.
func NewPromptID() PromptID {
	return PromptID(uuid.New())
}

// ParsePromptID parses a prompt identifier, rejecting the nil UUID.
func ParsePromptID(s string) (PromptID, error) {
	if s == "" {
		return PromptID{}, dErrors.New(dErrors.CodeInvalidInput, "prompt id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return PromptID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid prompt id format")
	}
	if parsed == uuid.Nil {
		return PromptID{}, dErrors.New(dErrors.CodeInvalidInput, "prompt id cannot be nil")
	}
	return PromptID(parsed), nil
}

func (id PromptID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the prompt identifier is the nil UUID.
func (id PromptID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
