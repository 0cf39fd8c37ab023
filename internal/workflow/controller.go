package workflow

import "context"

// Routing decisions after an evaluated action.
type Route int

const (
	RouteContinue Route = iota
	RouteEscalate
	RouteAbortErrors
	RouteAbortBudget
)

// Escalation thresholds. Five failures in a row means the screen is not
// what the planner thinks it is, no point hammering it further.
const (
	maxConsecutiveErrors = 5
	escalateAfterErrors  = 2
	defaultMaxActions    = 40
)

// Advice is an adaptive suggestion for a stuck run.
type Advice struct {
	Action    string
	Rationale string
}

const (
	AdviceRetry = "retry"
	AdviceSkip  = "skip"
	AdviceAbort = "abort"
)

// AdvisorContext is the failure window handed to the advisor.
type AdvisorContext struct {
	Step              Step
	PendingGate       string
	ConsecutiveErrors int
	TotalActions      int
	Progress          int
	RecentOutcomes    []string
}

// Advisor suggests how to proceed after repeated failures on one step.
type Advisor interface {
	SuggestAction(ctx context.Context, ac AdvisorContext) (Advice, error)
}

// Controller decides the route after each action: keep going, abort,
// or hand the failure window to the advisor for one override cycle.
type Controller struct {
	maxActions int
	advisor    Advisor
}

func NewController(maxActions int, advisor Advisor) *Controller {
	if maxActions <= 0 {
		maxActions = defaultMaxActions
	}
	return &Controller{maxActions: maxActions, advisor: advisor}
}

// MaxActions is the total action budget for a run.
func (c *Controller) MaxActions() int { return c.maxActions }

// Route inspects the run state after one evaluated action. Abort
// routes outrank escalation, and escalation only fires when an advisor
// is wired.
func (c *Controller) Route(st *RunState) Route {
	if st.ConsecutiveErrors >= maxConsecutiveErrors {
		return RouteAbortErrors
	}
	if st.TotalActions >= c.maxActions {
		return RouteAbortBudget
	}
	if c.advisor != nil && st.ConsecutiveErrors >= escalateAfterErrors {
		return RouteEscalate
	}
	return RouteContinue
}

// Escalate asks the advisor for a one-cycle override. Advisor failures
// fall back to retry so a broken advisor never kills a run.
func (c *Controller) Escalate(ctx context.Context, st *RunState, recent []string) Advice {
	ac := AdvisorContext{
		Step:              st.Step,
		PendingGate:       st.Gates.NextPending(st.Step),
		ConsecutiveErrors: st.ConsecutiveErrors,
		TotalActions:      st.TotalActions,
		Progress:          st.Progress,
		RecentOutcomes:    recent,
	}
	advice, err := c.advisor.SuggestAction(ctx, ac)
	if err != nil {
		return Advice{Action: AdviceRetry, Rationale: "advisor unavailable: " + err.Error()}
	}
	switch advice.Action {
	case AdviceRetry, AdviceSkip, AdviceAbort:
		return advice
	}
	return Advice{Action: AdviceRetry, Rationale: "unrecognized advice " + advice.Action}
}
