package gowasm

import (
	"go.uber.org/zap"

	"github.com/wasmleaf/gowasm/internal/interp"
	"github.com/wasmleaf/gowasm/internal/rt"
	"github.com/wasmleaf/gowasm/internal/rtlog"
)

// Config controls engine-wide behavior, built with With* functional
// options the way the teacher's wazero.RuntimeConfig is (config.go):
// each With* returns a modified clone rather than mutating the receiver.
type Config struct {
	logger     *zap.Logger
	callBudget int
	pageSize   uint32
}

// NewConfig returns a Config carrying spec.md §6's defaults: a 300-frame
// call budget, a 65536-byte page size, and a no-op logger.
func NewConfig() *Config {
	return &Config{
		logger:     zap.NewNop(),
		callBudget: interp.DefaultBudget,
		pageSize:   rt.PageSize,
	}
}

func (c *Config) clone() *Config {
	cp := *c
	return &cp
}

// WithLogger installs a structured logger for instantiation and stepper
// diagnostics (Debug/Warn level; see internal/rtlog).
func (c *Config) WithLogger(l *zap.Logger) *Config {
	ret := c.clone()
	ret.logger = l
	return ret
}

// WithCallBudget overrides the default 300-frame call budget — useful for
// tests that want to observe ExhaustionError without 300 levels of setup.
func (c *Config) WithCallBudget(n int) *Config {
	ret := c.clone()
	ret.callBudget = n
	return ret
}

// WithPageSize overrides the default 65536-byte page size. This affects
// every MemoryInstance allocated after the option is applied, process-wide
// (see rt.SetPageSize) — production embeddings should not call this.
func (c *Config) WithPageSize(n uint32) *Config {
	ret := c.clone()
	ret.pageSize = n
	return ret
}

// apply installs c's settings into the process-wide primitives that back
// it. Called once by Initialize before running the instantiation pipeline.
func (c *Config) apply() {
	rtlog.SetLogger(c.logger)
	rt.SetPageSize(c.pageSize)
	interp.SetCallBudget(c.callBudget)
}
