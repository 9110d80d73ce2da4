// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package deploy

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrDeploymentSubmission = errors.New("deployment submission failed")
	ErrConfirmation         = errors.New("deployment confirmation failed")

	// ErrConfirmationTimeout is a confirmation failure caused by the wait
	// deadline running out.
	ErrConfirmationTimeout = errors.New("timed out waiting for deployment confirmation")

	ErrAlreadyRun = errors.New("runner has already been run")
)

// Stage is a step of the deployment pipeline.
type Stage uint8

const (
	StageLookup Stage = iota
	StageSubmit
	StageConfirm
)

func (s Stage) String() string {
	switch s {
	case StageLookup:
		return "lookup"
	case StageSubmit:
		return "submit"
	case StageConfirm:
		return "confirm"
	}

	return fmt.Sprintf("stage(%d)", uint8(s))
}

// Error is returned by Runner.Run. errors.Is matches the sentinel of the
// stage that failed, and the underlying cause.
type Error struct {
	Stage    Stage
	Template string
	Timeout  bool
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Stage, e.Template, e.kind(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Cause() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if target == e.kind() {
		return true
	}

	return e.Stage == StageConfirm && target == ErrConfirmation
}

func (e *Error) kind() error {
	switch e.Stage {
	case StageLookup:
		return ErrTemplateNotFound
	case StageSubmit:
		return ErrDeploymentSubmission
	}

	if e.Timeout {
		return ErrConfirmationTimeout
	}

	return ErrConfirmation
}
