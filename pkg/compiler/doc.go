/*
Package compiler turns validated equation text into a symbolic expression and
a numeric function, running the risky part in a sandbox.

Parsing builds exact values eagerly, so crafted inputs such as an
exponent tower can exhaust CPU and memory. The parse happens in a worker
behind a ports.Sandbox; the caller waits a bounded time and treats a worker
that never answers as "no verdict":

	c := compiler.New(sandbox, compiler.WithLogger(logger))
	res, err := c.Compile(ctx, text)
	switch {
	case err != nil:  // *domain.SyntaxError, or domain.ErrSandbox
	case res == nil:  // timed out, canceled or crashed
	default:          // res.Expr, res.Func
	}

The worker side is Serve, wired through process.ServeIfWorker.
*/
package compiler
