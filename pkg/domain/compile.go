package domain

import "encoding/json"

// CompileRequest is the message sent to an isolated compile worker.
type CompileRequest struct {
	ID         string   `json:"id"`
	Expression string   `json:"expression"`
	Variables  []string `json:"variables"`
}

// CompileReply is the worker's answer. Exactly one of Error or the
// Expr/Program pair is set.
type CompileReply struct {
	ID      string          `json:"id"`
	Expr    json.RawMessage `json:"expr,omitempty"`
	Program json.RawMessage `json:"program,omitempty"`
	Error   *ReplyError     `json:"error,omitempty"`
}

// Reply error kinds.
const (
	ReplySyntax   = "syntax"
	ReplyInternal = "internal"
)

// ReplyError describes a failure inside the worker.
type ReplyError struct {
	Kind    string `json:"kind"`
	Pos     int    `json:"pos,omitempty"`
	Message string `json:"message"`
}
