// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flash provides a sparse model of the target Flash memory.
package flash

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

const (
	// MaxSize is the size of the supported address space. Devices with larger
	// memory can be used but only this much data can be loaded into an Image.
	MaxSize = 16 * 1024 * 1024

	// Blank is the value of the erased Flash byte.
	Blank = 0xff
)

var ErrOverflow = errors.New("address exceeds the maximum image size")

// Image is a sparse Flash image. Every address that has never been written
// reads as Blank. The zero value is an empty image ready to use.
type Image struct {
	data []byte
	mask bitset.BitSet
}

// New returns an empty image.
func New() *Image {
	return new(Image)
}

// Reset discards all data.
func (m *Image) Reset() {
	m.data = m.data[:0]
	m.mask.ClearAll()
}

// Write stores data at the addr. It fails without modifying the image if any
// byte of data would land outside [0, MaxSize).
func (m *Image) Write(addr int, data []byte) error {
	end := addr + len(data)
	if addr < 0 || end > MaxSize {
		return errors.Wrapf(ErrOverflow, "write %d bytes at %#x", len(data), addr)
	}
	if n := len(m.data); end > n {
		if end > cap(m.data) {
			m.data = append(m.data[:cap(m.data)], make([]byte, end-cap(m.data))...)
		}
		m.data = m.data[:end]
		for i := n; i < end; i++ {
			m.data[i] = Blank
		}
	}
	copy(m.data[addr:], data)
	for i := range data {
		m.mask.Set(uint(addr + i))
	}
	return nil
}

// Written reports whether the byte at addr was written.
func (m *Image) Written(addr int) bool {
	return addr >= 0 && m.mask.Test(uint(addr))
}

// HasData reports whether any byte in the inclusive range [begin, end] was
// written. It returns false if the range exceeds the image address space.
func (m *Image) HasData(begin, end int) bool {
	if begin < 0 || begin >= MaxSize || end < 0 || end >= MaxSize {
		return false
	}
	i, ok := m.mask.NextSet(uint(begin))
	return ok && i <= uint(end)
}

// Read fills p with the content of the image starting from addr. Bytes that
// were never written read as Blank.
func (m *Image) Read(p []byte, addr int) {
	for i := range p {
		a := addr + i
		if a >= 0 && a < len(m.data) && m.mask.Test(uint(a)) {
			p[i] = m.data[a]
		} else {
			p[i] = Blank
		}
	}
}

// IsBlank reports whether all written bytes in [addr, addr+n) are equal to
// Blank. A range without any written byte is blank.
func (m *Image) IsBlank(addr, n int) bool {
	if addr < 0 {
		n += addr
		addr = 0
	}
	end := min(addr+n, len(m.data))
	for a := addr; a < end; a++ {
		if m.data[a] != Blank && m.mask.Test(uint(a)) {
			return false
		}
	}
	return true
}

// Len returns the number of written bytes.
func (m *Image) Len() int {
	return int(m.mask.Count())
}

// End returns the address just past the last written byte.
func (m *Image) End() int {
	for a := len(m.data) - 1; a >= 0; a-- {
		if m.mask.Test(uint(a)) {
			return a + 1
		}
	}
	return 0
}

// Segment is a contiguous run of written bytes.
type Segment struct {
	Addr int
	Data []byte
}

// Segments returns the written parts of the image in the address order. The
// returned data slices alias the image memory.
func (m *Image) Segments() []Segment {
	var ss []Segment
	i, ok := m.mask.NextSet(0)
	for ok && int(i) < len(m.data) {
		j, clr := m.mask.NextClear(i)
		if !clr || int(j) > len(m.data) {
			j = uint(len(m.data))
		}
		ss = append(ss, Segment{int(i), m.data[i:j]})
		i, ok = m.mask.NextSet(j)
	}
	return ss
}
