package session

import (
	"context"
	"errors"
	"time"
)

const (
	// Lifetime is how long a session lives past creation or refresh.
	// The cookie expiry follows the same clock so the two never
	// disagree. It must stay strictly greater than TouchWindow: a
	// record that expires before its touch window elapses can never be
	// refreshed.
	Lifetime = 48 * time.Hour

	// TouchWindow is the minimum elapsed time since the last touch
	// before expiry is refreshed again. Throttling here bounds write
	// load under high request volume; expiry is advisory, the cookie
	// itself is the capability.
	TouchWindow = 24 * time.Hour

	// PayloadVersion tags the payload schema so stored sessions survive
	// deployments that add fields.
	PayloadVersion = 1
)

var (
	// ErrNotFound is returned for absent or expired sessions. Read
	// paths treat it as "no session", never as a failure.
	ErrNotFound = errors.New("session: not found")

	// ErrUnavailable wraps store-connectivity failures. Read paths
	// degrade to unauthenticated; write paths fail the request.
	ErrUnavailable = errors.New("session: store unavailable")
)

// Payload is the application-defined part of a session. It is stored as
// a versioned blob; its shape is not assumed stable across deployments.
type Payload struct {
	Version int                 `json:"version"`
	Flash   map[string][]string `json:"flash,omitempty"`
	Values  map[string]string   `json:"values,omitempty"`
}

// NewPayload returns an empty payload at the current schema version.
func NewPayload() Payload {
	return Payload{Version: PayloadVersion}
}

// Set stores a string value under key, allocating the map on first use.
func (p *Payload) Set(key, value string) {
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	p.Values[key] = value
}

// Get returns the value for key, or "" when absent.
func (p *Payload) Get(key string) string {
	return p.Values[key]
}

// Delete removes key from the payload.
func (p *Payload) Delete(key string) {
	delete(p.Values, key)
}

// AddFlash queues a one-shot message under the given category.
func (p *Payload) AddFlash(category, message string) {
	if p.Flash == nil {
		p.Flash = make(map[string][]string)
	}
	p.Flash[category] = append(p.Flash[category], message)
}

// ConsumeFlash returns and clears the messages for a category.
func (p *Payload) ConsumeFlash(category string) []string {
	msgs := p.Flash[category]
	delete(p.Flash, category)
	return msgs
}

// Record is one durable session. UserID is empty until a principal is
// bound at login.
type Record struct {
	ID            string    `json:"session_id"`
	UserID        string    `json:"user_id,omitempty"`
	Payload       Payload   `json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
	LastTouchedAt time.Time `json:"last_touched_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Store persists sessions. Implementations own all persistence; callers
// hold only transient, request-scoped references to records.
type Store interface {
	// Create persists a new record.
	Create(ctx context.Context, rec Record) error

	// Get returns the record, or ErrNotFound when absent or expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Save replaces the record's payload and principal binding without
	// moving its expiry.
	Save(ctx context.Context, rec Record) error

	// Touch refreshes expiry if the touch window has elapsed since the
	// last touch. It is monotonic: expiry never moves backward.
	Touch(ctx context.Context, id string) error

	// Delete removes the record. Deleting an absent record is not an
	// error.
	Delete(ctx context.Context, id string) error
}

// NewRecord builds a fresh anonymous record with a generated ID.
func NewRecord(now time.Time) (Record, error) {
	id, err := GenerateID()
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:            id,
		Payload:       NewPayload(),
		CreatedAt:     now,
		LastTouchedAt: now,
		ExpiresAt:     now.Add(Lifetime),
	}, nil
}
