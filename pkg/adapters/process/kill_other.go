//go:build !unix

package process

import (
	"errors"
	"os"
	"os/exec"
)

func isolate(*exec.Cmd) {}

func kill(cmd *exec.Cmd) error {
	err := cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
