// Package presenter exposes trust prompts over an API. Prompts wait in a
// registry until the sender answers them or they expire; an expired prompt is
// a dismissal.
package presenter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
	"sendgate/pkg/requestcontext"
)

// Status of a registered prompt.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
	StatusExpired  Status = "expired"
)

const defaultTTL = 5 * time.Minute

type ticketKey struct{}

// Ticket links one gate invocation to the prompt it raised, so the caller's
// completion can be recorded against that prompt.
type Ticket struct {
	registry *Registry
	mu       sync.Mutex
	promptID id.PromptID
}

// PromptID returns the prompt raised under this ticket, if any.
func (t *Ticket) PromptID() (id.PromptID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.promptID, !t.promptID.IsNil()
}

// Complete records the gate outcome for the ticket's prompt.
func (t *Ticket) Complete(outcome models.Outcome) {
	if promptID, ok := t.PromptID(); ok {
		t.registry.record(promptID, outcome)
	}
}

func (t *Ticket) bind(promptID id.PromptID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promptID = promptID
}

// View is a read-only snapshot of a prompt.
type View struct {
	Prompt      models.Prompt
	Status      Status
	Outcome     *models.Outcome
	Fingerprint *models.Fingerprint
	ExpiresAt   time.Time
}

type entry struct {
	prompt      models.Prompt
	accountID   id.AccountID
	onChoice    func(models.Decision)
	status      Status
	outcome     *models.Outcome
	fingerprint *models.Fingerprint
	expiresAt   time.Time
	done        chan struct{}
}

func (e *entry) view() *View {
	v := &View{
		Prompt:      e.prompt,
		Status:      e.status,
		Fingerprint: e.fingerprint,
		ExpiresAt:   e.expiresAt,
	}
	if e.outcome != nil {
		o := *e.outcome
		v.Outcome = &o
	}
	return v
}

// Registry is a Presenter that parks prompts until an API call answers them.
type Registry struct {
	mu      sync.Mutex
	prompts map[id.PromptID]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Registry)

// WithTTL sets how long a prompt waits for an answer.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		prompts: make(map[id.PromptID]*entry),
		ttl:     defaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTicket returns a context carrying a fresh ticket for one gate invocation.
func (r *Registry) NewTicket(ctx context.Context) (context.Context, *Ticket) {
	t := &Ticket{registry: r}
	return context.WithValue(ctx, ticketKey{}, t), t
}

// PresentChoice parks the prompt until Decide or expiry.
func (r *Registry) PresentChoice(ctx context.Context, prompt models.Prompt, onChoice func(models.Decision)) {
	e := &entry{
		prompt:    prompt,
		accountID: requestcontext.AccountID(ctx),
		onChoice:  onChoice,
		status:    StatusPending,
		expiresAt: r.now().Add(r.ttl),
		done:      make(chan struct{}),
	}
	r.mu.Lock()
	r.prompts[prompt.ID] = e
	r.mu.Unlock()

	if t, ok := ctx.Value(ticketKey{}).(*Ticket); ok {
		t.bind(prompt.ID)
	}
	r.logger.DebugContext(ctx, "trust prompt registered",
		"prompt_id", prompt.ID.String(),
		"recipient_id", prompt.RecipientID.String(),
		"expires_at", e.expiresAt,
	)
}

// PresentFingerprint attaches the safety number to the prompt it was built for.
func (r *Registry) PresentFingerprint(ctx context.Context, prompt models.Prompt, fingerprint *models.Fingerprint) {
	if prompt.ID.IsNil() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.prompts[prompt.ID]; ok {
		e.fingerprint = fingerprint
	}
}

// Get returns a snapshot of a prompt owned by accountID.
func (r *Registry) Get(_ context.Context, accountID id.AccountID, promptID id.PromptID) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(accountID, promptID)
	if err != nil {
		return nil, err
	}
	return e.view(), nil
}

// Decide answers a pending prompt and waits until the gate reports the
// outcome or ctx ends. A prompt accepts one answer.
func (r *Registry) Decide(ctx context.Context, accountID id.AccountID, promptID id.PromptID, kind models.DecisionKind) (*View, error) {
	r.mu.Lock()
	e, err := r.lookup(accountID, promptID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	switch e.status {
	case StatusExpired:
		r.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "prompt has expired")
	case StatusAnswered:
		r.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "prompt has already been answered")
	}
	e.status = StatusAnswered
	r.mu.Unlock()

	e.onChoice(models.Decision{Kind: kind})

	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for the decision to be recorded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return e.view(), nil
}

// Sweep dismisses prompts that outlived their TTL and forgets settled prompts
// one TTL after they expired. An answered prompt is kept until its outcome
// has been recorded. It returns the number of prompts dismissed.
func (r *Registry) Sweep(ctx context.Context) int {
	now := r.now()
	var dismissed []*entry

	r.mu.Lock()
	for promptID, e := range r.prompts {
		if now.Before(e.expiresAt) {
			continue
		}
		switch {
		case e.status == StatusPending:
			e.status = StatusExpired
			dismissed = append(dismissed, e)
		case e.outcome == nil && e.status != StatusExpired:
			// Answered, but the commit has not reported back yet.
		case !now.Before(e.expiresAt.Add(r.ttl)):
			delete(r.prompts, promptID)
		}
	}
	r.mu.Unlock()

	for _, e := range dismissed {
		r.logger.InfoContext(ctx, "trust prompt expired, dismissing",
			"prompt_id", e.prompt.ID.String(),
			"recipient_id", e.prompt.RecipientID.String(),
		)
		e.onChoice(models.Cancel())
	}
	return len(dismissed)
}

// Run sweeps on an interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	interval := max(r.ttl/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Len returns the number of prompts held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}

func (r *Registry) record(promptID id.PromptID, outcome models.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.prompts[promptID]
	if !ok || e.outcome != nil {
		return
	}
	e.outcome = &outcome
	close(e.done)
}

// lookup must be called with r.mu held. Prompts owned by another account are
// reported as missing.
func (r *Registry) lookup(accountID id.AccountID, promptID id.PromptID) (*entry, error) {
	e, ok := r.prompts[promptID]
	if !ok || (e.accountID != "" && e.accountID != accountID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "prompt not found")
	}
	return e, nil
}
