package memory

import (
	"fmt"

	"go.uber.org/zap"
)

// Type describes the different types of memories available
type Type string

const (
	RecentType Type = "recent"
	ReplayType Type = "replay"
)

// Config implements a specific configuration of a Memory
type Config struct {
	Type     Type `json:"type" yaml:"type"`
	Capacity int  `json:"capacity" yaml:"capacity"`
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if c.Type != RecentType && c.Type != ReplayType {
		return misconfigured("validate", fmt.Sprintf("unknown memory type %q",
			c.Type))
	}
	if c.Capacity < 1 {
		return misconfigured("validate", fmt.Sprintf("capacity must be > 0"+
			"\n\twant(>0)\n\thave(%v)", c.Capacity))
	}
	return nil
}

// Create creates and returns the Memory described by the Config. The
// seed is only used by memories which sample.
func (c Config) Create(featureSize, actionSize int, seed uint64,
	logger *zap.Logger) (Memory, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Type {
	case RecentType:
		return NewRecent(c.Capacity, featureSize, actionSize, logger)
	default:
		return NewReplay(c.Capacity, featureSize, actionSize, seed, logger)
	}
}
