package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/numeric"
	"github.com/aretw0/quiver/pkg/symbolic"
)

// Serve reads one CompileRequest from r and writes the CompileReply to w.
// It runs inside the sandbox worker.
func Serve(r io.Reader, w io.Writer) error {
	var req domain.CompileRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	reply := Handle(req)
	return json.NewEncoder(w).Encode(reply)
}

// Handle compiles a request in the current process.
func Handle(req domain.CompileRequest) domain.CompileReply {
	reply := domain.CompileReply{ID: req.ID}
	vars := req.Variables
	if len(vars) == 0 {
		vars = Variables
	}

	expr, err := symbolic.NewParser(vars...).Parse(req.Expression)
	if err != nil {
		var se *domain.SyntaxError
		if errors.As(err, &se) {
			reply.Error = &domain.ReplyError{Kind: domain.ReplySyntax, Pos: se.Pos, Message: se.Msg}
			return reply
		}
		return internal(reply, err)
	}

	prog, err := numeric.Compile(expr, vars...)
	if err != nil {
		return internal(reply, err)
	}
	if reply.Expr, err = symbolic.Marshal(expr); err != nil {
		return internal(reply, err)
	}
	if reply.Program, err = json.Marshal(prog); err != nil {
		return internal(reply, err)
	}
	return reply
}

func internal(reply domain.CompileReply, err error) domain.CompileReply {
	reply.Error = &domain.ReplyError{Kind: domain.ReplyInternal, Message: err.Error()}
	reply.Expr, reply.Program = nil, nil
	return reply
}
