// Released under an MIT license. See LICENSE.

// Package ui provides discdiag's command-line interface: the `Diag> `
// prompt when stdin is a terminal, and bare line reading when it is
// not, so the program can be driven by `discdiag </path/to/script`.
// Interactive mode runs on liner, with SetCtrlCAborts(true) so
// interrupt folds into program state instead of killing the process;
// each line read is handed straight to Engine.RunLine.
package ui

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/samiam95124/diskdiagnostic/internal/outcome"
)

// Prompt is the REPL's prompt string.
const Prompt = "Diag> "

// Engine is the subset of dispatch.Engine the REPL drives.
type Engine interface {
	RunLine(line string) outcome.T
}

// Breaker is the subset of breaksig.T the REPL needs: folding a
// liner prompt abort (Ctrl-C) into the engine's sampled break flag
// keeps Ctrl-C cooperative instead of killing the process.
type Breaker interface {
	Set()
}

// Run reads commands from stdin until EOF or a command yields
// outcome.Exit, dispatching each to e. brk receives Ctrl-C while a
// prompt is being read. argv carries the process arguments; discdiag
// takes no flags, so only os.Args[0] is ever of interest.
func Run(e Engine, brk Breaker, argv []string) outcome.T {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return runBatch(e)
	}

	return runInteractive(e, brk)
}

func runBatch(e Engine) outcome.T {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	last := outcome.Ok

	for scanner.Scan() {
		last = e.RunLine(scanner.Text())
		if last == outcome.Exit {
			return last
		}
	}

	return last
}

func runInteractive(e Engine, brk Breaker) outcome.T {
	cli := liner.NewLiner()
	defer cli.Close()

	cli.SetCtrlCAborts(true)

	last := outcome.Ok

	for {
		line, err := cli.Prompt(Prompt)

		switch err {
		case nil:
			cli.AppendHistory(line)
		case liner.ErrPromptAborted:
			brk.Set()

			continue
		default:
			fmt.Println()

			return last
		}

		last = e.RunLine(line)
		if last == outcome.Exit {
			return last
		}
	}
}
