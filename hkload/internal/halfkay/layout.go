// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package halfkay implements the block transfer protocol of the HalfKay
// bootloader used by the Teensy boards.
package halfkay

import "fmt"

// Image is the read only view of the Flash image being programmed.
type Image interface {
	// HasData reports whether any byte in [begin, end] was loaded.
	HasData(begin, end int) bool
	// IsBlank reports whether all loaded bytes in [addr, addr+n) are 0xff.
	IsBlank(addr, n int) bool
	// Read fills p with the image content at addr, 0xff where not loaded.
	Read(p []byte, addr int)
}

// Format is the block header format.
type Format uint8

const (
	// Format16 header is the 16-bit little-endian block address. Used by
	// the devices with less than 64 KiB of Flash and blocks up to 256 B.
	Format16 Format = iota + 1

	// FormatPage header is the 16-bit little-endian page number (address
	// divided by 256). Used by the 256 B block devices with 64 KiB or more.
	FormatPage

	// Format24 header is the 24-bit little-endian block address padded with
	// zeros to 64 bytes. Used by the devices with 512 B and 1 KiB blocks.
	Format24
)

func (f Format) String() string {
	switch f {
	case Format16:
		return "addr16"
	case FormatPage:
		return "page16"
	case Format24:
		return "addr24"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// HeaderSize returns the number of header bytes preceding the block data.
func (f Format) HeaderSize() int {
	if f == Format24 {
		return 64
	}
	return 2
}

// ConfigError is returned for the unsupported code/block size combination.
type ConfigError struct {
	CodeSize  int
	BlockSize int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"halfkay: unsupported code/block size: %d/%d", e.CodeSize, e.BlockSize,
	)
}

// Layout describes the memory of the programmed device and the header format
// used for every block written to it.
type Layout struct {
	Format    Format
	CodeSize  int
	BlockSize int
}

// NewLayout selects the block format for the device with the given code and
// block size.
func NewLayout(codeSize, blockSize int) (Layout, error) {
	l := Layout{CodeSize: codeSize, BlockSize: blockSize}
	switch {
	case codeSize <= 0 || blockSize <= 0:
		return l, &ConfigError{codeSize, blockSize}
	case blockSize <= 256 && codeSize < 0x10000:
		l.Format = Format16
	case blockSize == 256:
		l.Format = FormatPage
	case blockSize == 512 || blockSize == 1024:
		l.Format = Format24
	default:
		return l, &ConfigError{codeSize, blockSize}
	}
	return l, nil
}

// WriteSize returns the size of the single transfer (header + block).
func (l Layout) WriteSize() int {
	return l.Format.HeaderSize() + l.BlockSize
}

// Encode assembles the block at addr in buf, which is grown if too small, and
// returns the WriteSize bytes long result.
func (l Layout) Encode(buf []byte, addr int, img Image) []byte {
	buf = l.buffer(buf)
	hs := l.Format.HeaderSize()
	clear(buf[:hs])
	switch l.Format {
	case Format16:
		buf[0] = byte(addr)
		buf[1] = byte(addr >> 8)
	case FormatPage:
		buf[0] = byte(addr >> 8)
		buf[1] = byte(addr >> 16)
	case Format24:
		buf[0] = byte(addr)
		buf[1] = byte(addr >> 8)
		buf[2] = byte(addr >> 16)
	}
	img.Read(buf[hs:], addr)
	return buf
}

// BootPacket builds in buf the transfer that makes the bootloader to start the
// loaded program.
func (l Layout) BootPacket(buf []byte) []byte {
	buf = l.buffer(buf)
	clear(buf)
	buf[0] = 0xff
	buf[1] = 0xff
	buf[2] = 0xff
	return buf
}

func (l Layout) buffer(buf []byte) []byte {
	n := l.WriteSize()
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

// skip reports whether the block at addr need not be written. The first block
// is always written because it triggers the Flash erase.
func (l Layout) skip(img Image, addr int) bool {
	if addr == 0 {
		return false
	}
	return !img.HasData(addr, addr+l.BlockSize-1) || img.IsBlank(addr, l.BlockSize)
}

// Plan returns the addresses of the blocks that will be written to program img.
func (l Layout) Plan(img Image) []int {
	var addrs []int
	for addr := 0; addr < l.CodeSize; addr += l.BlockSize {
		if !l.skip(img, addr) {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
