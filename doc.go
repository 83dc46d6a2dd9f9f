/*
Package quiver builds direction fields for first-order differential equations
dy/dx = f(x, y) typed in by untrusted users.

Turning text into a field takes four steps. Each one can also be called on
its own:

  - Validate: an allow-list of characters and function names, checked before
    anything is parsed.
  - Compile: parse and simplify the text in a sandboxed worker process with a
    hard timeout (5s by default). A worker that hangs on a crafted input is
    killed, and the caller gets "no verdict" instead of a stuck server.
  - Evaluate: sample f at every point of the grid. A failure at one point
    (division by zero, log of a negative number, overflow) zeroes that point
    only.
  - Normalize: rescale each (1, f) vector. Zero-length directions collapse
    to (0, 0).

# Usage

Programs that use the default process sandbox must let the binary act as its
own worker:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/quiver"
		"github.com/aretw0/quiver/pkg/adapters/process"
		"github.com/aretw0/quiver/pkg/compiler"
	)

	func main() {
		process.ServeIfWorker(compiler.Serve)

		eng, err := quiver.New()
		if err != nil {
			log.Fatal(err)
		}
		f, err := eng.BuildField(context.Background(), "x + y")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(f.Len(), f.Caption)
	}

The engine keeps no state between calls and is safe for concurrent use.
*/
package quiver
