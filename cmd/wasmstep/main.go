// Command wasmstep is an interactive terminal visualizer for the stepper,
// modeled on wippyai-wasm-runtime/cmd/run/main.go and interactive.go: pick
// a demo module, pick one of its exported functions, supply arguments, and
// see either its results or the EvalError it trapped/crashed with. It is a
// consumer of the engine, not part of the core (spec.md §1's CLI boundary).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	var (
		demoFlag = flag.String("demo", "add", "Demo module to load (add, sum-to-n, grow-memory, divide-checked)")
		list     = flag.Bool("list", false, "List demo modules and their exports, then exit")
	)
	flag.Parse()

	all := demos()

	if *list {
		for _, d := range all {
			fmt.Printf("%s:\n", d.name)
			for _, exp := range d.module.Exports {
				fmt.Printf("  %s\n", exp.Name)
			}
		}
		return
	}

	var chosen *demo
	for i := range all {
		if all[i].name == *demoFlag {
			chosen = &all[i]
			break
		}
	}
	if chosen == nil {
		names := make([]string, len(all))
		for i, d := range all {
			names[i] = d.name
		}
		fmt.Fprintf(os.Stderr, "unknown demo %q; available: %s\n", *demoFlag, strings.Join(names, ", "))
		os.Exit(1)
	}

	if err := runInteractive(*chosen); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
