// Released under an MIT license. See LICENSE.

// Command discdiag is an interactive raw-block-device exerciser: it
// fills and compares in-memory buffers against sector contents and
// drives a disk through scripted I/O workloads. It wires a device
// backend, the fixed I/O buffers, and the scripting engine together,
// then hands off to the REPL.
package main

import (
	"bufio"
	"fmt"
	"os"
	"syscall"

	"github.com/samiam95124/diskdiagnostic/internal/device"
	"github.com/samiam95124/diskdiagnostic/internal/device/simfile"
	"github.com/samiam95124/diskdiagnostic/internal/dispatch"
	"github.com/samiam95124/diskdiagnostic/internal/pager"
	"github.com/samiam95124/diskdiagnostic/internal/sector"
	"github.com/samiam95124/diskdiagnostic/internal/ui"
)

// startupFile is the program auto-loaded at boot if present in the
// current directory.
const startupFile = "discdiag.ini"

func main() {
	os.Exit(run())
}

func run() int {
	fmt.Println(dispatch.Version)

	dev := device.NewHybrid(device.NewReal(), simfile.New("."))

	e := dispatch.New(dev, sector.DefaultCount, os.Stdout)
	e.Pager.Prompt = pager.NewPrompter(bufio.NewReader(os.Stdin), e.Break.Check)

	if err := dev.Init(); err != nil {
		fmt.Println(diagerrPrefix + err.Error())
	}

	stop := e.Break.Watch(os.Interrupt, syscall.SIGABRT)
	defer stop()

	loadStartupFile(e)

	ui.Run(e, e.Break, os.Args)

	if err := dev.Deinit(); err != nil {
		fmt.Println(diagerrPrefix + err.Error())
	}

	if e.LastErrored() && e.ExitOnError {
		return 1
	}

	return 0
}

const diagerrPrefix = "*** Error: "

// loadStartupFile silently loads discdiag.ini from the current
// directory if present, then runs its "init" label as the first
// command.
func loadStartupFile(e *dispatch.Engine) {
	data, err := os.ReadFile(startupFile)
	if err != nil {
		return
	}

	e.Program.Load(string(data))

	if e.Program.Lookup("init") != nil {
		e.RunLine("init")
	}
}
