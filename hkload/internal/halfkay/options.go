// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package halfkay

import "time"

// Default timeouts.
const (
	EraseTimeout = 5 * time.Second
	BlockTimeout = time.Second / 2
	BootTimeout  = time.Second / 2
)

// Logger receives the diagnostic messages. The glog.Verbose type implements
// it.
type Logger interface {
	Infof(format string, args ...any)
}

// Config holds the programmer configuration.
type Config struct {
	Logger Logger

	// Progress is called before every written block with the block address and
	// once at the end with addr equal to size.
	Progress func(addr, size int)

	EraseTimeout time.Duration // timeout for the first block
	BlockTimeout time.Duration // timeout for the other blocks
	BootTimeout  time.Duration
}

func defaultConfig() Config {
	return Config{
		EraseTimeout: EraseTimeout,
		BlockTimeout: BlockTimeout,
		BootTimeout:  BootTimeout,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithLogger sets the logger for the programmer operations.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithProgress sets the progress callback.
func WithProgress(f func(addr, size int)) Option {
	return func(c *Config) {
		c.Progress = f
	}
}

// WithTimeouts overrides the default timeouts. Zero values leave the
// corresponding default unchanged.
func WithTimeouts(erase, block, boot time.Duration) Option {
	return func(c *Config) {
		if erase > 0 {
			c.EraseTimeout = erase
		}
		if block > 0 {
			c.BlockTimeout = block
		}
		if boot > 0 {
			c.BootTimeout = boot
		}
	}
}
