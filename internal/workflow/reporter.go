package workflow

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Reporter writes the console trace of a run and the final report.
type Reporter struct {
	out   io.Writer
	quiet bool
	trace []string
}

func NewReporter() *Reporter {
	return &Reporter{out: os.Stdout}
}

// NewQuietReporter keeps the trace but writes nothing, used by the API
// server where runs execute in the background.
func NewQuietReporter() *Reporter {
	return &Reporter{out: io.Discard, quiet: true}
}

func (r *Reporter) Start(st *RunState) {
	fmt.Fprintf(r.out, "🚀 Starting signup run for %s\n", st.Account.Email)
}

func (r *Reporter) Action(st *RunState, req ActionRequest, out Outcome) {
	status := "✅"
	if !out.Success {
		status = "⚠️"
	}
	line := fmt.Sprintf("STEP=%s | PROGRESS=%d%% | ACTION=%s/%s | %s",
		strings.ToUpper(st.Step.String()), st.Progress, req.Tool, req.Verb, out.Description)
	r.trace = append(r.trace, line)
	fmt.Fprintf(r.out, "%s [%s] %s\n", status, time.Now().Format("15:04:05"), line)
}

func (r *Reporter) Escalation(st *RunState, advice Advice) {
	line := fmt.Sprintf("STEP=%s | ESCALATE=%s | %s",
		strings.ToUpper(st.Step.String()), advice.Action, advice.Rationale)
	r.trace = append(r.trace, line)
	fmt.Fprintf(r.out, "🤖 [%s] %s\n", time.Now().Format("15:04:05"), line)
}

func (r *Reporter) Note(format string, args ...any) {
	fmt.Fprintf(r.out, "⚠️ "+format+"\n", args...)
}

func (r *Reporter) Finish(sum Summary) {
	fmt.Fprintln(r.out, "\n===== EXECUTION REPORT =====")
	fmt.Fprintf(r.out, "Account: %s\n", sum.AccountEmail)
	fmt.Fprintf(r.out, "Success: %v\n", sum.Success)
	fmt.Fprintf(r.out, "Final step: %s\n", sum.Step)
	fmt.Fprintf(r.out, "Progress: %d%%\n", sum.Progress)
	fmt.Fprintf(r.out, "Actions: %d\n", sum.TotalActions)
	fmt.Fprintf(r.out, "Duration: %s\n", sum.Duration.Truncate(time.Millisecond))
	if sum.ErrorMessage != "" {
		fmt.Fprintf(r.out, "Error: %s\n", sum.ErrorMessage)
	}
	if !r.quiet && len(r.trace) > 0 {
		fmt.Fprintln(r.out, "\n--- RAW ACTION TRACE ---")
		for _, line := range r.trace {
			fmt.Fprintln(r.out, line)
		}
	}
	fmt.Fprintln(r.out, "===== END OF REPORT =====")
}

// Trace returns the accumulated trace lines.
func (r *Reporter) Trace() []string {
	return append([]string(nil), r.trace...)
}
