// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package halfkay

import (
	"fmt"
	"time"
)

// Device is the bootloader transport.
type Device interface {
	// Write sends p as a single transfer. It returns nil only if the whole p
	// was accepted by the device before the timeout expired.
	Write(p []byte, timeout time.Duration) error
}

// Error describes the failed device operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return "halfkay: " + e.Op + ": " + e.Err.Error()
}

func wrapErr(op string, err *error) {
	if *err != nil {
		*err = &Error{op, *err}
	}
}

// Stats summarizes the programming run.
type Stats struct {
	Written int // number of blocks written
	Skipped int // number of unused or blank blocks skipped
}

// Programmer writes Flash images using the HalfKay protocol. It must not be
// used concurrently.
type Programmer struct {
	dev    Device
	layout Layout
	config Config
	buf    []byte
}

// New returns a programmer that writes to dev using the given layout.
func New(dev Device, layout Layout, opts ...Option) *Programmer {
	if dev == nil {
		panic("halfkay: nil device")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Programmer{
		dev:    dev,
		layout: layout,
		config: cfg,
		buf:    make([]byte, layout.WriteSize()),
	}
}

// Program writes img to the device in the address order. The first block is
// always written, with a longer timeout because it triggers the Flash erase.
// The remaining blocks are written only if they contain data other than
// 0xff. Any failed write aborts the programming.
func (p *Programmer) Program(img Image) (st Stats, err error) {
	l := p.layout
	if l.Format == 0 {
		return st, &ConfigError{l.CodeSize, l.BlockSize}
	}
	p.logf("programming %d KiB in %d B blocks (%v)", l.CodeSize/1024, l.BlockSize, l.Format)
	blocks := l.Plan(img)
	st.Skipped = (l.CodeSize+l.BlockSize-1)/l.BlockSize - len(blocks)
	for _, addr := range blocks {
		p.progress(addr)
		timeout := p.config.BlockTimeout
		if addr == 0 {
			timeout = p.config.EraseTimeout
		}
		p.buf = l.Encode(p.buf, addr, img)
		err = p.dev.Write(p.buf, timeout)
		wrapErr(fmt.Sprintf("Write %#x", addr), &err)
		if err != nil {
			return
		}
		st.Written++
	}
	p.progress(l.CodeSize)
	p.logf("wrote %d blocks, skipped %d", st.Written, st.Skipped)
	return
}

// Boot makes the bootloader to exit and run the loaded program.
func (p *Programmer) Boot() (err error) {
	p.logf("Booting")
	p.buf = p.layout.BootPacket(p.buf)
	err = p.dev.Write(p.buf, p.config.BootTimeout)
	wrapErr("Boot", &err)
	return
}

func (p *Programmer) logf(format string, args ...any) {
	if p.config.Logger != nil {
		p.config.Logger.Infof(format, args...)
	}
}

func (p *Programmer) progress(addr int) {
	if p.config.Progress != nil {
		p.config.Progress(addr, p.layout.CodeSize)
	}
}
