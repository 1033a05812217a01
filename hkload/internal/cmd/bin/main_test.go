// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/embeddedgo/halfkay/hkload/internal/flash"
	"github.com/embeddedgo/halfkay/hkload/internal/ihex"
)

func TestWriteBin(t *testing.T) {
	img := flash.New()
	img.Write(2, []byte{1, 2})
	img.Write(6, []byte{3})
	var buf bytes.Buffer
	if err := writeBin(&buf, img, 0); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 1, 2, 0, 0, 3}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %x, want %x", buf.Bytes(), want)
	}
	buf.Reset()
	if err := writeBin(&buf, flash.New(), 0xff); err != nil || buf.Len() != 0 {
		t.Errorf("empty image: %d bytes, %v", buf.Len(), err)
	}
}

func TestWriteHexRoundTrip(t *testing.T) {
	img := flash.New()
	img.Write(0, []byte{0x0c, 0x94, 0x34, 0x00})
	img.Write(0x1ff0, bytes.Repeat([]byte{0x5a}, 40)) // crosses a record boundary
	img.Write(0x2_0010, []byte{1, 2, 3})              // needs an extended address
	var buf bytes.Buffer
	if err := writeHex(&buf, img, 16); err != nil {
		t.Fatal(err)
	}
	for i, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if n := len(strings.TrimSpace(line)); n > 11+2*16 {
			t.Errorf("line %d: %d characters", i+1, n)
		}
	}
	got := flash.New()
	n, err := ihex.NewLoader(got, ihex.Relocation{}).Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != img.Len() || got.Len() != img.Len() {
		t.Fatalf("loaded %d bytes, want %d", n, img.Len())
	}
	want, have := img.Segments(), got.Segments()
	if len(have) != len(want) {
		t.Fatalf("%d segments, want %d", len(have), len(want))
	}
	for i := range want {
		if have[i].Addr != want[i].Addr || !bytes.Equal(have[i].Data, want[i].Data) {
			t.Errorf("segment %d: got %#x %x, want %#x %x",
				i, have[i].Addr, have[i].Data, want[i].Addr, want[i].Data)
		}
	}
}
