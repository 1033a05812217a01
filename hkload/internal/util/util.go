// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/golang/glog"
)

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

func Fatal(f string, args ...any) {
	glog.Flush()
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// FatalErr prints an error description and exits the program if the
// err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	glog.Flush()
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	os.Stderr.WriteString(s)
	os.Exit(1)
}

// SetVerbose directs the glog output to stderr and enables the V(1) messages
// if verbose is true.
func SetVerbose(verbose bool) {
	if !flag.Parsed() {
		flag.CommandLine.Parse(nil)
	}
	flag.Set("logtostderr", "true")
	if verbose {
		flag.Set("v", "1")
	} else {
		flag.Set("v", "0")
	}
}

// DirName returns the last element of the path to the current working
// directory.
func DirName() string {
	dir, err := os.Getwd()
	FatalErr("", err)
	dir = filepath.Base(dir)
	if dir == "/" || dir == "." {
		dir = ""
	}
	return dir
}

// Module returns the last element of the path of the Go module in the
// current working directory.
func Module() string {
	out, err := exec.Command("go", "env", "GOMOD").Output()
	FatalErr("", err)
	gomod := filepath.Clean(string(bytes.TrimRightFunc(out, unicode.IsSpace)))
	if gomod == "" || gomod == os.DevNull {
		Fatal("go.mod file not found in current directory or any parent directory")
	}
	f, err := os.Open(gomod)
	FatalErr("", err)
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fs := bytes.Fields(sc.Bytes())
		if len(fs) >= 2 && string(fs[0]) == "module" {
			return filepath.Base(string(fs[1]))
		}
	}
	FatalErr("", sc.Err())
	Fatal("there is no module directive in " + gomod)
	return ""
}

// InOutFiles infers the name of the input file from the name of the Go module
// (or the current directory if there is no go.mod file) if inName is empty,
// and the name of the output file from the input one if outName is empty.
func InOutFiles(inName, inSuffix, outName, outSuffix string) (string, string) {
	if inName == "" {
		fs, err := os.Stat("go.mod")
		if err != nil || !fs.Mode().IsRegular() {
			inName = DirName()
		} else {
			inName = Module()
		}
		inName += inSuffix
	}
	if outName == "" {
		outName = strings.TrimSuffix(inName, filepath.Ext(inName)) + outSuffix
	}
	return inName, outName
}

var pbuf = make([]byte, 80)

const (
	ptodo = "                         ] "
	pdone = " [========================="
)

// Progress draws the progress bar on stderr. It ends the line when cur == max.
func Progress(pre string, cur, max, scale int, post string) {
	if max <= 0 {
		return
	}
	pbuf = pbuf[:0]
	pbuf = append(pbuf, '\r')
	pbuf = append(pbuf, pre...)
	done := 25 * cur / max
	pbuf = append(pbuf, pdone[:2+done]...)
	pbuf = append(pbuf, ptodo[done:]...)
	pbuf = strconv.AppendInt(pbuf, int64(cur/scale), 10)
	pbuf = append(pbuf, ' ')
	pbuf = append(pbuf, post...)
	if cur == max {
		pbuf = append(pbuf, '\n')
	}
	os.Stderr.Write(pbuf)
}
