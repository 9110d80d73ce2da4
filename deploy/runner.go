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
	"context"
	"sync"
	"time"

	"github.com/perlin-network/votedeploy/log"
	"github.com/perlin-network/votedeploy/sys"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State of a Runner.
type State uint8

const (
	StateNotStarted State = iota
	StateDeploying
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateDeploying:
		return "deploying"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}

// Result of a confirmed deployment.
type Result struct {
	Template   string
	Candidates []string
	Receipt    Receipt
	Elapsed    time.Duration
}

type RunnerOption func(r *Runner)

func WithTemplate(name string) RunnerOption {
	return func(r *Runner) {
		r.template = name
	}
}

// WithCandidates sets the constructor argument. The list is copied.
func WithCandidates(names []string) RunnerOption {
	return func(r *Runner) {
		r.candidates = append([]string(nil), names...)
	}
}

// WithConfirmTimeout bounds the confirmation wait. Zero waits until the
// context passed to Run is done.
func WithConfirmTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		r.confirmTimeout = timeout
	}
}

func WithRecorder(recorder Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner deploys a single contract instance. A Runner is single use.
type Runner struct {
	provider Provider

	template       string
	candidates     []string
	confirmTimeout time.Duration
	recorder       Recorder
	logger         zerolog.Logger

	stateLock sync.RWMutex
	state     State
}

func NewRunner(provider Provider, opts ...RunnerOption) *Runner {
	r := &Runner{
		provider:       provider,
		template:       sys.DefaultTemplate,
		candidates:     sys.DefaultCandidates(),
		confirmTimeout: sys.DefaultConfirmTimeout,
		logger:         log.Deploy(""),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Runner) State() State {
	r.stateLock.RLock()
	defer r.stateLock.RUnlock()

	return r.state
}

// Run resolves the template, submits the deployment and waits for its
// confirmation. Each failing step yields an *Error for that stage. Nothing
// is retried.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.stateLock.Lock()
	if r.state != StateNotStarted {
		r.stateLock.Unlock()
		return nil, ErrAlreadyRun
	}
	r.state = StateDeploying
	r.stateLock.Unlock()

	result, err := r.run(ctx)

	r.stateLock.Lock()
	if err != nil {
		r.state = StateFailed
	} else {
		r.state = StateConfirmed
	}
	r.stateLock.Unlock()

	if err != nil {
		return nil, err
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, result); err != nil {
			log.ErrorF(&r.logger, err, "Failed to record deployment of %s.", r.template)
		}
	}

	return result, nil
}

func (r *Runner) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	factory, err := r.provider.Template(ctx, r.template)
	if err != nil {
		return nil, r.fail(StageLookup, err)
	}

	candidates := append([]string(nil), r.candidates...)

	deployment, err := factory.Deploy(ctx, candidates)
	if err != nil {
		return nil, r.fail(StageSubmit, err)
	}

	submitted := r.logger.With().Str(log.KeyEvent, log.EventDeploySubmitted).Logger()
	log.Info(&submitted, &log.DeploySubmitted{
		Template:   r.template,
		Candidates: r.candidates,
		Address:    deployment.Address(),
		TxHash:     deployment.TxHash(),
	})

	waitCtx := ctx
	if r.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.confirmTimeout)
		defer cancel()
	}

	receipt, err := deployment.Wait(waitCtx)
	if err != nil {
		e := r.fail(StageConfirm, err)
		// Only the runner's own deadline counts as a timeout, not the caller's.
		e.Timeout = waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil
		return nil, e
	}

	if receipt == nil {
		return nil, r.fail(StageConfirm, errors.New("no receipt returned"))
	}

	result := &Result{
		Template:   r.template,
		Candidates: append([]string(nil), r.candidates...),
		Receipt:    *receipt,
		Elapsed:    time.Since(start),
	}

	confirmed := r.logger.With().Str(log.KeyEvent, log.EventDeployConfirmed).Logger()
	log.Info(&confirmed, &log.DeployConfirmed{
		Template: r.template,
		Address:  receipt.Address,
		TxHash:   receipt.TxHash,
		Block:    receipt.BlockNumber,
		GasUsed:  receipt.GasUsed,
		Elapsed:  result.Elapsed,
	})

	return result, nil
}

func (r *Runner) fail(stage Stage, err error) *Error {
	e := &Error{Stage: stage, Template: r.template, Err: err}

	failed := r.logger.With().Str(log.KeyEvent, log.EventDeployFailed).Logger()
	failed.Debug().Err(err).Str("stage", stage.String()).Str("template", r.template).Msg("Deployment step failed.")

	return e
}
