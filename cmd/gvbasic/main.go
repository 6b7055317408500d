// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command gvbasic loads a tokenized .BAS or plain-text .TXT GVBASIC
// program, compiles it, and drives it to completion against a
// device.Emulator, relaying INPUT through the controlling terminal
// (INKEY$ reads the emulator's key buffer, which this command never
// fills) and rendering the emulator's text screen to stdout after
// every batch of instructions.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/arucil/gvbasic/bytecode"
	"github.com/arucil/gvbasic/charset"
	"github.com/arucil/gvbasic/compiler"
	"github.com/arucil/gvbasic/config"
	"github.com/arucil/gvbasic/device"
	"github.com/arucil/gvbasic/document"
	"github.com/arucil/gvbasic/mbf5"
	"github.com/arucil/gvbasic/parser"
	"github.com/arucil/gvbasic/vm"
)

var (
	dashm        string
	dashc        string
	dashdata     string
	dashlist     bool
	dashbudget   int
	printBuild   bool
	printVersion bool
)

func init() {
	flagDefaultUsage = flag.CommandLine.Usage
	flag.CommandLine.Usage = printHelp

	flag.StringVar(&dashm, "m", "", "machine profile name (requires -c)")
	flag.StringVar(&dashc, "c", "", "path to a machines.yaml machine-profile registry")
	flag.StringVar(&dashdata, "data", ".", "directory OPEN/LOAD/SAVE resolve file names against")
	flag.BoolVar(&dashlist, "list", false, "detokenize and print the program instead of running it")
	flag.IntVar(&dashbudget, "budget", 100000, "instructions executed per Step before yielding to the screen renderer")
	flag.BoolVar(&printBuild, "build", false, "print the build info of the executable")
	flag.BoolVar(&printVersion, "version", false, "print the version of the executable")
}

func exitf(f string, args ...any) {
	exit(fmt.Errorf(f, args...))
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printHelp() {
	helporder := []string{
		usagePlaceholder,
		"Machine profile",
		"m",
		"c",
		"Files",
		"data",
		"list",
		"Execution",
		"budget",
		"Other",
		"version",
		"build",
	}
	PrintOrderedHelp(helporder)
}

func loadMachineProps() config.MachineProps {
	if dashm == "" && dashc == "" {
		return config.DefaultProps()
	}
	if dashc == "" {
		exitf("-m 需要和 -c 一起使用")
	}
	reg, err := config.Load(dashc)
	if err != nil {
		exit(err)
	}
	if dashm == "" {
		names := reg.Names()
		if len(names) != 1 {
			exitf("配置文件中有多个机型，必须用 -m 指定其中一个")
		}
		dashm = names[0]
	}
	props, err := reg.Lookup(dashm)
	if err != nil {
		exit(err)
	}
	return props
}

// buildLines re-splits src the same way parser.Parse does internally
// (on '\n', terminators kept) so each compiler.Line.Text exactly
// matches what parser.ParseLine consumed for that line -- ast.Range
// spans reference the original text, not a copy parser.Result carries.
func buildLines(src string) []compiler.Line {
	var lines []compiler.Line
	start := 0
	for start < len(src) {
		nl := strings.IndexByte(src[start:], '\n')
		var line string
		if nl < 0 {
			line = src[start:]
			start = len(src)
		} else {
			line = src[start : start+nl+1]
			start += nl + 1
		}
		res := parser.ParseLine(line)
		lines = append(lines, compiler.Line{
			Text:  line,
			Label: res.Line.Label,
			Stmts: res.Line.Stmts,
			Arena: res.Arena,
		})
	}
	return lines
}

func loadProgram(path string, version *charset.Version) (document.Text, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取程序文件失败: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".txt" {
		doc, lerr := document.LoadTxt(content, version)
		if lerr != nil {
			return nil, lerr
		}
		return doc.Text, nil
	}
	doc, lerr := document.LoadBas(content, version)
	if lerr != nil {
		return nil, lerr
	}
	return doc.Text, nil
}

func compile(src string, version charset.Version) *bytecode.Program {
	lines := buildLines(src)
	prog, diags := compiler.Compile(lines, version)
	hadError := false
	for _, d := range diags {
		sev := "警告"
		if d.Severity == compiler.SeverityError {
			sev = "错误"
			hadError = true
		}
		fmt.Fprintf(os.Stderr, "%s[%d:%d]: %s\n", sev, d.Range.Start, d.Range.End, d.Message)
	}
	if hadError {
		os.Exit(1)
	}
	return prog
}

// renderScreen redraws dev's text buffer to stdout, clearing the
// terminal first; the emulator keeps the screen as plain
// charset-encoded cell bytes, so rendering is a straight decode, not
// a bitmap blit -- the glyph rasterization in device/font.go exists
// for the emulator's own dirty-rect tracking, not for this path.
func renderScreen(dev *device.Emulator, version charset.Version) {
	fmt.Print("\x1b[H\x1b[2J")
	cols, rows := dev.Props.Columns, dev.Props.Rows
	for row := 0; row < rows; row++ {
		var cells charset.ByteString
		for col := 0; col < cols; col++ {
			b := dev.ReadByte(dev.Props.TextBufferAddr + uint16(row*cols+col))
			if b == 0 {
				break
			}
			cells = append(cells, b)
		}
		fmt.Println(cells.ToStringLossy(version))
	}
}

func readKeyboardInput(stdin *bufio.Reader, prompt *charset.ByteString, fields []bytecode.KeyboardInput, version charset.Version) bytecode.ExecInput {
	p := "? "
	if prompt != nil {
		p = prompt.ToStringLossy(version) + "? "
	}
	fmt.Print(p)
	line, _ := stdin.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	parts := strings.SplitN(line, ",", len(fields))
	values := make([]bytecode.Value, len(fields))
	for i, f := range fields {
		var tok string
		if i < len(parts) {
			tok = strings.TrimSpace(parts[i])
		}
		if f.Kind == bytecode.KeyboardInputString {
			bs, _ := charset.FromString(tok, version)
			values[i] = bytecode.StringValue(bs)
		} else {
			n, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				n = 0
			}
			num, err := mbf5.FromFloat64(n)
			if err != nil {
				num = mbf5.Zero
			}
			values[i] = bytecode.NumberValue(num)
		}
	}
	return bytecode.ExecInput{Kind: bytecode.ExecInputKeyboard, Keyboard: values}
}

func run(prog *bytecode.Program, props config.MachineProps, version charset.Version) {
	dev := device.New(props, nil)
	dev.Files().DataDir = dashdata
	m := vm.New(prog, dev)
	stdin := bufio.NewReader(os.Stdin)

	var input *bytecode.ExecInput
	for {
		res, err := m.Step(dashbudget, input)
		input = nil
		if err != nil {
			renderScreen(dev, version)
			exit(err)
		}
		switch res.Kind {
		case bytecode.ExecEnd:
			renderScreen(dev, version)
			return
		case bytecode.ExecContinue:
			// budget exhausted mid-program; loop for more.
			renderScreen(dev, version)
		case bytecode.ExecSleep:
			renderScreen(dev, version)
			time.Sleep(time.Duration(res.Nanos))
		case bytecode.ExecKeyboardInput:
			renderScreen(dev, version)
			in := readKeyboardInput(stdin, res.Prompt, res.Fields, version)
			input = &in
		}
	}
}

func main() {
	flag.Parse()

	if printVersion {
		bi, ok := debug.ReadBuildInfo()
		if ok && bi.Main.Version != "" {
			fmt.Println(bi.Main.Version)
		} else {
			fmt.Println("version not available, please check -build")
		}
		return
	}
	if printBuild {
		bi, ok := debug.ReadBuildInfo()
		if ok {
			fmt.Print(bi.String())
		} else {
			fmt.Println("build info not available")
		}
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.CommandLine.Usage()
		os.Exit(1)
	}

	props := loadMachineProps()
	version := props.EmojiVersion
	text, err := loadProgram(args[0], &version)
	if err != nil {
		exit(err)
	}
	src := text.String()

	if dashlist {
		fmt.Print(src)
		return
	}

	prog := compile(src, version)
	run(prog, props, version)
}
