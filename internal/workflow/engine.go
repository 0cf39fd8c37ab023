package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
)

var (
	ErrSessionSetup    = errors.New("session setup failed")
	ErrTooManyFailures = errors.New("too many consecutive failures")
	ErrBudgetExhausted = errors.New("action budget exhausted")
	ErrInterrupted     = errors.New("run interrupted")
)

// loopPacing is the idle delay between planning cycles.
const loopPacing = 500 * time.Millisecond

// recentWindow is how many outcome descriptions the advisor sees.
const recentWindow = 3

// ActionRecorder receives every evaluated action, e.g. for the run log.
type ActionRecorder interface {
	RecordAction(step Step, verb Verb, outcome Outcome) error
}

// Engine runs one signup flow end to end against a session.
type Engine struct {
	session  driver.Session
	exec     *Executor
	planner  *Planner
	machine  *Machine
	ctrl     *Controller
	reporter *Reporter
	recorder ActionRecorder
	pacing   time.Duration
}

// NewEngine assembles an engine. recorder may be nil.
func NewEngine(session driver.Session, exec *Executor, ctrl *Controller, reporter *Reporter, recorder ActionRecorder) *Engine {
	return &Engine{
		session:  session,
		exec:     exec,
		planner:  &Planner{adaptive: ctrl.advisor != nil},
		machine:  &Machine{},
		ctrl:     ctrl,
		reporter: reporter,
		recorder: recorder,
		pacing:   loopPacing,
	}
}

// Run drives the flow to a terminal step. The session is closed on
// every exit path. The returned error is nil when the flow reached the
// success terminal, otherwise one of the sentinel errors above.
func (eng *Engine) Run(ctx context.Context, st *RunState) (Summary, error) {
	defer func() {
		if err := eng.session.Quit(); err != nil {
			eng.reporter.Note("session quit warning: %v", err)
		}
	}()

	eng.reporter.Start(st)

	// The health probe doubles as the init transition. A session that
	// cannot report its screen size cannot run anything, and that is a
	// setup fault, not a flow failure, so no budget is consumed.
	if _, err := eng.session.ScreenSize(ctx); err != nil {
		eng.machine.MarkError(st, fmt.Sprintf("session setup: %v", err))
		return eng.finish(st), fmt.Errorf("%w: %v", ErrSessionSetup, err)
	}
	st.enterStep(StepWelcome)

	var recent []string
	var runErr error

	for !st.Done {
		if ctx.Err() != nil {
			eng.machine.MarkError(st, "interrupted")
			runErr = ErrInterrupted
			break
		}

		req := eng.planner.Plan(st)
		desc, err := eng.exec.Execute(ctx, req)
		if err != nil {
			eng.machine.MarkError(st, "interrupted")
			runErr = ErrInterrupted
			break
		}
		st.TotalActions++

		out := Evaluate(desc)
		eng.reporter.Action(st, req, out)
		if eng.recorder != nil {
			if rerr := eng.recorder.RecordAction(st.Step, req.Verb, out); rerr != nil {
				eng.reporter.Note("record action: %v", rerr)
			}
		}
		recent = append(recent, out.Description)
		if len(recent) > recentWindow {
			recent = recent[len(recent)-recentWindow:]
		}

		if out.Success {
			st.ConsecutiveErrors = 0
			eng.machine.Advance(st, out)
			if st.Done {
				break
			}
		} else {
			st.ConsecutiveErrors++
		}

		switch eng.ctrl.Route(st) {
		case RouteAbortErrors:
			eng.machine.MarkError(st, "too many consecutive failures")
			runErr = ErrTooManyFailures
		case RouteAbortBudget:
			eng.machine.MarkError(st, "action budget exhausted")
			runErr = ErrBudgetExhausted
		case RouteEscalate:
			advice := eng.ctrl.Escalate(ctx, st, recent)
			eng.reporter.Escalation(st, advice)
			switch advice.Action {
			case AdviceSkip:
				st.ConsecutiveErrors = 0
				eng.machine.ForceSkip(st)
			case AdviceAbort:
				eng.machine.MarkError(st, "aborted on advice: "+advice.Rationale)
				runErr = ErrTooManyFailures
			}
		}

		if st.Done {
			break
		}
		select {
		case <-time.After(eng.pacing):
		case <-ctx.Done():
		}
	}

	return eng.finish(st), runErr
}

func (eng *Engine) finish(st *RunState) Summary {
	st.FinishedAt = time.Now()
	sum := st.summary()
	eng.reporter.Finish(sum)
	return sum
}
