// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mcu describes the microcontrollers supported by the HalfKay
// bootloader.
package mcu

import (
	"strings"

	"github.com/pkg/errors"
)

type MCU struct {
	Name      string
	CodeSize  int // bytes of Flash available for the program
	BlockSize int // bytes written by the single transfer
}

var table = [...]MCU{
	{"at90usb162", 15872, 128},
	{"atmega32u4", 32256, 128},
	{"at90usb646", 64512, 256},
	{"at90usb1286", 130048, 256},
	{"mkl26z64", 63488, 512},
	{"mk20dx128", 131072, 1024},
	{"mk20dx256", 262144, 1024},
	{"mk66fx1m0", 1048576, 1024},
	{"mk64fx512", 524288, 1024},
	{"imxrt1062", 2031616, 1024},

	// Board names as used in boards.txt.
	{"TEENSY2", 32256, 128},
	{"TEENSY2PP", 130048, 256},
	{"TEENSYLC", 63488, 512},
	{"TEENSY30", 131072, 1024},
	{"TEENSY31", 262144, 1024},
	{"TEENSY32", 262144, 1024},
	{"TEENSY35", 524288, 1024},
	{"TEENSY36", 1048576, 1024},
	{"TEENSY40", 2031616, 1024},
	{"TEENSY41", 8126464, 1024},
	{"TEENSY_MICROMOD", 16515072, 1024},
}

// Lookup finds the MCU by name. The name is case insensitive.
func Lookup(name string) (MCU, error) {
	if name == "" {
		return MCU{}, errors.New("no MCU specified")
	}
	for _, m := range table {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return MCU{}, errors.Errorf("unknown MCU type %q", name)
}

// All returns all supported MCUs.
func All() []MCU {
	return table[:]
}
