// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcus

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/embeddedgo/halfkay/hkload/internal/mcu"
)

const Descr = "list the supported MCUs"

func Main(cmd string, args []string) {
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s\n", cmd)
		os.Exit(1)
	}
	List(os.Stdout)
}

// List prints the supported MCUs with their code and block sizes.
func List(w io.Writer) {
	fmt.Fprintln(w, "Supported MCUs are:")
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, m := range mcu.All() {
		fmt.Fprintf(tw, " - %s\tcode: %d B\tblock: %d B\n", m.Name, m.CodeSize, m.BlockSize)
	}
	tw.Flush()
}
