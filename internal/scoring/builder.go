package scoring

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

type registration struct {
	scorer pillars.Scorer
	tier   types.Tier
}

// Builder collects pillar registrations. The Engine it builds is immutable.
type Builder struct {
	regs   []registration
	clock  func() time.Time
	logger *slog.Logger
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds a scorer active from tier upwards. Registry order is call order.
func (b *Builder) Register(s pillars.Scorer, tier types.Tier) *Builder {
	b.regs = append(b.regs, registration{scorer: s, tier: tier})
	return b
}

// WithDefaults registers the thirteen built-in pillars at their default tiers.
func (b *Builder) WithDefaults(net pillars.Network) *Builder {
	for _, s := range pillars.All(net) {
		tier, _ := PillarTier(s.Key())
		b.Register(s, tier)
	}
	return b
}

// WithClock sets the time source for scored_at and freshness.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithLogger sets the engine logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the registrations and returns the Engine.
func (b *Builder) Build() (*Engine, error) {
	e := &Engine{
		regs:   make([]registration, 0, len(b.regs)),
		index:  make(map[types.PillarKey]int, len(b.regs)),
		clock:  b.clock,
		logger: b.logger,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	for i, r := range b.regs {
		if r.scorer == nil {
			return nil, &RegistrationError{Message: fmt.Sprintf("scorer %d is nil", i)}
		}
		key := r.scorer.Key()
		if !r.tier.Valid() {
			return nil, &RegistrationError{
				Message: fmt.Sprintf("pillar %s", key),
				Cause:   &UnknownTierError{Tier: string(r.tier)},
			}
		}
		if r.scorer.MaxScore() <= 0 {
			return nil, &RegistrationError{Message: fmt.Sprintf("pillar %s has no score budget", key)}
		}
		if _, dup := e.index[key]; dup {
			return nil, &RegistrationError{Message: fmt.Sprintf("pillar %s registered twice", key)}
		}
		e.index[key] = len(e.regs)
		e.regs = append(e.regs, r)
	}
	return e, nil
}

// NewEngine builds an engine with the built-in pillars.
func NewEngine(net pillars.Network, logger *slog.Logger) (*Engine, error) {
	return NewBuilder().WithDefaults(net).WithLogger(logger).Build()
}
