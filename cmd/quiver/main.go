package main

import (
	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/compiler"
)

func main() {
	// Sandbox workers are this binary re-executed; they never reach cobra.
	process.ServeIfWorker(compiler.Serve)
	Execute()
}
