// Package pos implements the point-of-sale core: the order aggregate and
// its item state machine, the two-tier cancellation approval workflow,
// the append-only inventory ledger with consumption resolution, the
// sequence allocator and the daily Z-closure.
//
// ARCHITECTURE:
//
// Every mutating operation is a read-modify-write against the document
// store: read document + revision → apply the change in memory → write
// conditioned on the revision read. Two terminals racing on the same
// order see exactly one winner; the loser gets CONCURRENT_MODIFICATION
// and must reload. The engine never merges item lists automatically and
// never retries on the caller's behalf (the sequence allocator's bounded
// counter retry is the single exception).
//
// The inventory ledger sidesteps write contention entirely: movements
// are append-only documents, so concurrent recordings never conflict and
// current stock is a derived sum, not a stored running total.
//
// KNOWN GAP: the store offers no multi-document atomicity. Operations
// that touch two documents (billing writes order then ticket, approval
// writes order then request then movements) are ordered so the
// revision-checked write carrying the state decision goes first; a crash
// between writes can leave trailing records unwritten.
package pos

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wzamorag/tjAdmin-sub001/internal/auth"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// IDGenerator produces document ids. Implemented by UUIDv7Generator
// (production) and FixedGenerator (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 document ids.
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a fresh UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for deterministic tests.
// Panics when the supply is exhausted, which fails fast on test
// misconfiguration.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined id.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// DefaultAllocRetries bounds the sequence allocator's counter CAS loop.
const DefaultAllocRetries = 5

// Engine wires the POS operations to the document store and the external
// authorizer. Engines are stateless beyond their configuration and safe
// for concurrent use; all shared state lives in the store.
type Engine struct {
	store docstore.Store
	auth  auth.Authorizer

	now          func() time.Time
	ids          IDGenerator
	loc          *time.Location
	allocRetries int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides document id generation (tests).
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.ids = gen }
}

// WithLocation sets the venue's time zone, used to bound the calendar
// day of a closure. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithAllocRetries bounds the sequence allocator retry loop.
func WithAllocRetries(n int) Option {
	return func(e *Engine) { e.allocRetries = n }
}

// New creates an Engine over the given store and authorizer.
func New(store docstore.Store, authorizer auth.Authorizer, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		auth:         authorizer,
		now:          time.Now,
		ids:          UUIDv7Generator{},
		loc:          time.Local,
		allocRetries: DefaultAllocRetries,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
