package service

import (
	"math/rand/v2"
	"strconv"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/google/uuid"
)

// IDGenerator produces passenger ids for requests that do not carry one.
type IDGenerator interface {
	NewID() string
}

// RangeIDGenerator draws a uniform random integer in [Min, Max].
//
// Collisions are possible and not detected: a colliding create overwrites
// the earlier record. Use UUIDGenerator when that matters.
type RangeIDGenerator struct {
	Min int
	Max int
}

func (g RangeIDGenerator) NewID() string {
	return strconv.Itoa(g.Min + rand.IntN(g.Max-g.Min+1))
}

// UUIDGenerator returns random (v4) UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator selected by ids.strategy.
func NewIDGenerator(cfg config.IDConfig) IDGenerator {
	if cfg.Strategy == config.IDStrategyUUID {
		return UUIDGenerator{}
	}
	return RangeIDGenerator{Min: cfg.Min, Max: cfg.Max}
}
