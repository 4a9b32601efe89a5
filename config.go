package fulfillment

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/runtime/coordinator"
	"github.com/viant/fulfillment/runtime/suborder"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/allocator"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON or YAML. The zero-value is useful - all nested
// fields inherit their package defaults.
type Config struct {
	Coordinator coordinator.Config `json:"coordinator" yaml:"coordinator"`
	SubOrder    suborder.Config    `json:"subOrder" yaml:"subOrder"`
	Activity    activity.Options   `json:"activity" yaml:"activity"`
	Approval    *policy.Approval   `json:"approval,omitempty" yaml:"approval,omitempty"`
	Stores      []allocator.Store  `json:"stores,omitempty" yaml:"stores,omitempty"`
}

// DefaultConfig returns a Config populated with the production timings and the
// built-in store catalogue. Callers may modify the returned struct before
// passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Coordinator: coordinator.DefaultConfig(),
		SubOrder:    suborder.DefaultConfig(),
		Activity:    activity.DefaultOptions(),
		Stores:      allocator.DefaultStores(),
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Coordinator.AllocationDelay < 0 {
		return fmt.Errorf("coordinator.allocationDelay must be >= 0")
	}
	if c.SubOrder.PickingDwell < 0 || c.SubOrder.DispatchDelay < 0 || c.SubOrder.DeliveryDelay < 0 {
		return fmt.Errorf("subOrder delays must be >= 0")
	}
	if c.Activity.MaxRetries < 0 {
		return fmt.Errorf("activity.maxRetries must be >= 0")
	}
	for i, store := range c.Stores {
		if store.ID == "" {
			return fmt.Errorf("stores[%d].id is empty", i)
		}
	}
	return nil
}

// DecodeYAMLConfig decodes a YAML document into a Config layered on top of
// the defaults, so a partial document only overrides what it names.
func DecodeYAMLConfig(data []byte) (*Config, error) {
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// LoadConfig loads a YAML configuration from any afs-addressable location
// (file://, embed://, mem:// ...).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	return DecodeYAMLConfig(data)
}
