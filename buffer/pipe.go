// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"io"
	"os/exec"
)

// newCommand builds an *exec.Cmd from a command line produced by
// external.Build, following the same cl[0]/cl[1:] split used by
// blast.MakeDB.BuildCommand and blast.Nucleic.BuildCommand.
func newCommand(cl []string) *exec.Cmd {
	return exec.Command(cl[0], cl[1:]...)
}

// waitCloser closes the pipe end of a decompression command and waits
// for the child process to exit.
type waitCloser struct {
	cmd *exec.Cmd
	rc  io.ReadCloser
}

func (w waitCloser) Close() error {
	err := w.rc.Close()
	werr := w.cmd.Wait()
	if err != nil {
		return err
	}
	return werr
}
