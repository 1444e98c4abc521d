// Released under an MIT license. See LICENSE.

package dispatch

import (
	"github.com/samiam95124/diskdiagnostic/internal/cursor"
	"github.com/samiam95124/diskdiagnostic/internal/outcome"
)

// handler implements one verb. c is positioned just after the verb
// word, at (or before, across leading whitespace) its arguments.
// verbStart is the byte offset where the verb word itself began,
// needed by loop/loopq to key their per-site counter. moved reports
// whether the handler itself repositioned the current interpreter
// frame (a procedure call, go, or loop entry/skip), in which case the
// dispatch loop must not also sync the cursor from c.
type handler func(e *Engine, c *cursor.T, verbStart int) (outcome.T, error, bool)

// verbTable is the built-in verb registry. A program label always
// shadows a built-in of the same name — dispatchVerb checks labels
// first.
var verbTable map[string]handler

func init() {
	verbTable = map[string]handler{
		"read":  vRead,
		"r":     vRead,
		"write": vWrite,
		"w":     vWrite,

		"pattn":    vPattern,
		"pt":       vPattern,
		"comp":     vCompare,
		"c":        vCompare,
		"compmode": vCompMode,
		"cm":       vCompMode,

		"drive":      vDrive,
		"listdrives": vListDrives,
		"ld":         vListDrives,
		"unprot":     vUnprot,

		"dumpwrite": vDumpWrite,
		"dw":        vDumpWrite,
		"dumpread":  vDumpRead,
		"dr":        vDumpRead,

		"p":      vPrint,
		"print":  vPrint,
		"pn":     vPrintN,
		"printn": vPrintN,
		"echo":   vEcho,
		"echon":  vEchoN,

		"exit":        vExit,
		"exitonerror": vExitOnError,
		"input":       vInput,
		"i":           vInput,
		"srand":       vSrand,
		"list":        vList,
		"clear":       vClear,
		"save":        vSave,
		"load":        vLoad,
		"delt":        vDelt,

		"end": vEnd,
		"go":  vGo,
		"if":  vIf,

		"loop":  vLoop,
		"l":     vLoop,
		"loopq": vLoopQ,
		"lq":    vLoopQ,
		"u":     vUntilRestart,

		"while":   vWhile,
		"wend":    vWend,
		"repeat":  vRepeat,
		"until":   vUntil,
		"for":     vFor,
		"fend":    vFend,
		"select":  vSelect,
		"case":    vCase,
		"default": vDefault,
		"send":    vSend,

		"set":   vSet,
		"s":     vSet,
		"local": vLocal,

		"version": vVersion,
		"help":    vHelp,
		"?":       vHelp,
		"stat":    vStat,
	}
}
