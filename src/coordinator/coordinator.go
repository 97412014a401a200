// Package coordinator runs one selection session per display concurrently and
// joins them into a single report.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"screen-cropper/src/screenshot"
	"screen-cropper/src/session"
)

// ErrNothingSelected is returned by Report.Result when no display committed.
var ErrNothingSelected = errors.New("nothing selected")

// Policy decides what a failing session does to its siblings.
type Policy int

const (
	// PolicyContinue records the failure and lets the other displays carry on.
	PolicyContinue Policy = iota
	// PolicyAbort cancels every sibling on the first failure.
	PolicyAbort
)

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "continue"
}

// ParsePolicy accepts "continue" or "abort"; empty means continue.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return PolicyContinue, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicyContinue, fmt.Errorf("unknown partial failure policy %q (want continue or abort)", s)
	}
}

// Options tunes a Coordinator.
type Options struct {
	Policy Policy
	// Linked ends every session once the user finishes on any display.
	Linked bool
	// Displays limits the run to these display indices. Empty means all.
	Displays    []int
	Actions     []session.Action
	EnterAction session.Action
}

// Coordinator owns the collaborators shared by all sessions of one run.
type Coordinator struct {
	enumerator screenshot.Enumerator
	provider   screenshot.Provider
	windows    session.WindowFactory
	opts       Options
}

func New(e screenshot.Enumerator, p screenshot.Provider, w session.WindowFactory, opts Options) *Coordinator {
	return &Coordinator{enumerator: e, provider: p, windows: w, opts: opts}
}

// Report holds one outcome per display, in display order.
type Report struct {
	Outcomes []session.Outcome
}

// Committed returns the first committed outcome.
func (r Report) Committed() (session.Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Reason == session.ReasonCommitted {
			return o, true
		}
	}
	return session.Outcome{}, false
}

// Failures returns the outcomes of sessions that failed.
func (r Report) Failures() []session.Outcome {
	var failed []session.Outcome
	for _, o := range r.Outcomes {
		if o.Reason == session.ReasonFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Result returns the committed outcome or ErrNothingSelected.
func (r Report) Result() (session.Outcome, error) {
	if o, ok := r.Committed(); ok {
		return o, nil
	}
	return session.Outcome{}, ErrNothingSelected
}

// Run enumerates displays and runs a session on each until all of them end.
// With PolicyAbort the first session failure is returned. With PolicyContinue
// an error is returned only when every session failed.
func (c *Coordinator) Run(ctx context.Context) (Report, error) {
	displays, err := c.displays()
	if err != nil {
		return Report{}, err
	}
	log.Printf("coordinator: starting %d session(s), policy=%s linked=%t", len(displays), c.opts.Policy, c.opts.Linked)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g *errgroup.Group
	sessCtx := runCtx
	if c.opts.Policy == PolicyAbort {
		g, sessCtx = errgroup.WithContext(runCtx)
	} else {
		g = new(errgroup.Group)
	}

	outcomes := make([]session.Outcome, len(displays))
	for i, d := range displays {
		g.Go(func() error {
			out := c.runOne(sessCtx, d)
			outcomes[i] = out
			log.Printf("coordinator: %s ended %s", d.ID, out.Reason)
			if out.Reason == session.ReasonFailed && c.opts.Policy == PolicyAbort {
				return out.Err
			}
			if c.opts.Linked && out.Reason.UserEnded() {
				cancel()
			}
			return nil
		})
	}
	werr := g.Wait()

	report := Report{Outcomes: outcomes}
	if werr != nil {
		return report, werr
	}
	if failed := report.Failures(); len(failed) == len(outcomes) {
		errs := make([]error, 0, len(failed))
		for _, o := range failed {
			errs = append(errs, o.Err)
		}
		return report, errors.Join(errs...)
	}
	return report, nil
}

func (c *Coordinator) runOne(ctx context.Context, d screenshot.Display) (out session.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("coordinator: session on %s panicked: %v", d.ID, r)
			out = session.Outcome{Display: d, Reason: session.ReasonFailed, Err: fmt.Errorf("session on %s panicked: %v", d.ID, r)}
		}
	}()
	s := session.New(session.Options{
		Display:     d,
		Provider:    c.provider,
		Windows:     c.windows,
		Actions:     c.opts.Actions,
		EnterAction: c.opts.EnterAction,
	})
	return s.Run(ctx)
}

func (c *Coordinator) displays() ([]screenshot.Display, error) {
	all, err := c.enumerator.Displays()
	if err != nil {
		var enumErr *screenshot.EnumerationError
		if !errors.As(err, &enumErr) {
			err = &screenshot.EnumerationError{Err: err}
		}
		return nil, err
	}
	if len(all) == 0 {
		return nil, &screenshot.EnumerationError{Err: errors.New("no active displays found")}
	}
	if len(c.opts.Displays) == 0 {
		return all, nil
	}

	want := make(map[int]bool, len(c.opts.Displays))
	for _, idx := range c.opts.Displays {
		want[idx] = true
	}
	var picked []screenshot.Display
	for _, d := range all {
		if want[d.Index] {
			picked = append(picked, d)
		}
	}
	if len(picked) == 0 {
		return nil, &screenshot.EnumerationError{Err: fmt.Errorf("none of displays %v are active", c.opts.Displays)}
	}
	return picked, nil
}
