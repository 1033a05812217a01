// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"strconv"
	"strings"

	usb "github.com/google/gousb"
	"github.com/pkg/errors"
)

// ParseBusAddr parses the BUS:ADDR USB device address. It returns -1, -1 for
// the empty string.
func ParseBusAddr(busAddr string) (bus, addr int, err error) {
	if busAddr == "" {
		return -1, -1, nil
	}
	err = errors.New("bad USB device address: " + busAddr)
	b, a, ok := strings.Cut(busAddr, ":")
	if !ok {
		return -1, -1, err
	}
	n, perr := strconv.ParseUint(b, 10, 8)
	if perr != nil {
		return -1, -1, err
	}
	m, perr := strconv.ParseUint(a, 10, 8)
	if perr != nil {
		return -1, -1, err
	}
	return int(n), int(m), nil
}

// OpenUSB opens all USB devices with the given vendor and product ID, or only
// the one at busAddr if busAddr is not empty. The caller is responsible for
// closing the returned devices and the context.
func OpenUSB(vendor, product usb.ID, busAddr string) (ctx *usb.Context, devs []*usb.Device, err error) {
	bus, addr, err := ParseBusAddr(busAddr)
	if err != nil {
		return
	}
	ctx = usb.NewContext()
	devs, err = ctx.OpenDevices(func(desc *usb.DeviceDesc) bool {
		if bus >= 0 && (desc.Bus != bus || desc.Address != addr) {
			return false
		}
		return desc.Vendor == vendor && desc.Product == product
	})
	if err != nil {
		for _, d := range devs {
			d.Close()
		}
		ctx.Close()
		ctx, devs = nil, nil
	}
	return
}
