// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Hkload loads programs onto the Teensy boards running the HalfKay
// bootloader.
package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/embeddedgo/halfkay/hkload/internal/cmd/bin"
	"github.com/embeddedgo/halfkay/hkload/internal/cmd/load"
	"github.com/embeddedgo/halfkay/hkload/internal/cmd/mcus"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"bin":  {bin.DescrBin, bin.Main},
	"boot": {load.DescrBoot, load.Main},
	"hex":  {bin.DescrHex, bin.Main},
	"load": {load.Descr, load.Main},
	"mcus": {mcus.Descr, mcus.Main},
}

func printToolList() {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  hkload COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %-*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[os.Args[1]]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	tool.main(os.Args[1], os.Args[2:])
}
