package workflow

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Signal is a normalized tag extracted from a free-text action outcome.
type Signal string

const (
	SignalClicked        Signal = "clicked"
	SignalTyped          Signal = "typed"
	SignalNext           Signal = "next"
	SignalDropdown       Signal = "dropdown"
	SignalOption         Signal = "option_selected"
	SignalLongPressed    Signal = "long_pressed"
	SignalInbox          Signal = "inbox_reached"
	SignalTimeout        Signal = "timeout_exhausted"
	SignalDialogDismiss  Signal = "dialog_dismissed"
	SignalFieldEmail     Signal = "field_email"
	SignalFieldPassword  Signal = "field_password"
	SignalFieldFirstName Signal = "field_first_name"
	SignalFieldLastName  Signal = "field_last_name"
	SignalFieldYear      Signal = "field_year"
	SignalFieldDay       Signal = "field_day"
	SignalFieldMonth     Signal = "field_month"
)

// signalRules maps each tag to the lowercase keywords that raise it.
// Descriptions are free text written by the executor, the rules are the
// only contract between the two sides.
var signalRules = []struct {
	tag      Signal
	keywords []string
}{
	{SignalClicked, []string{"clicked", "tapped"}},
	{SignalTyped, []string{"typed", "entered text"}},
	{SignalNext, []string{"next", "continue"}},
	{SignalDropdown, []string{"dropdown", "spinner"}},
	{SignalOption, []string{"option", "selected value"}},
	{SignalLongPressed, []string{"long press", "press and hold", "held"}},
	{SignalInbox, []string{"inbox reached", "inbox confirmed"}},
	{SignalTimeout, []string{"timeout_exhausted"}},
	{SignalDialogDismiss, []string{"dismissed"}},
	{SignalFieldEmail, []string{"email"}},
	{SignalFieldPassword, []string{"password"}},
	{SignalFieldFirstName, []string{"first name", "first"}},
	{SignalFieldLastName, []string{"last name", "last"}},
	{SignalFieldYear, []string{"year"}},
	{SignalFieldDay, []string{"day"}},
	{SignalFieldMonth, []string{"month"}},
}

var successKeywords = []string{"SUCCESS", "COMPLETED", "FOUND", "CLICKED", "TYPED"}
var failureKeywords = []string{"FAILED", "ERROR", "TIMEOUT", "NOT FOUND"}

var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`in (\d+)ms`),
	regexp.MustCompile(`Duration: (\d+)ms`),
	regexp.MustCompile(`(\d+)ms`),
}

// SignalSet is the set of tags raised by one outcome.
type SignalSet map[Signal]bool

func (s SignalSet) Has(tag Signal) bool { return s[tag] }

// Outcome is the evaluated result of a single executed action.
type Outcome struct {
	Success     bool
	Description string
	Duration    time.Duration
	Signals     SignalSet
}

// Evaluate classifies a free-text action description. Success is
// decided by keyword majority, an explicit "SUCCESS:" marker always
// wins. "NOT FOUND" would otherwise double-count its FOUND substring,
// so matched failure phrases are blanked before the success scan.
func Evaluate(description string) Outcome {
	up := strings.ToUpper(description)

	scored := up
	failures := 0
	for _, k := range failureKeywords {
		failures += strings.Count(scored, k)
		scored = strings.ReplaceAll(scored, k, "")
	}
	successes := 0
	for _, k := range successKeywords {
		successes += strings.Count(scored, k)
	}
	success := successes > failures || strings.Contains(description, "SUCCESS:")

	low := strings.ToLower(description)
	signals := SignalSet{}
	for _, rule := range signalRules {
		for _, kw := range rule.keywords {
			if strings.Contains(low, kw) {
				signals[rule.tag] = true
				break
			}
		}
	}

	return Outcome{
		Success:     success,
		Description: description,
		Duration:    extractDuration(description),
		Signals:     signals,
	}
}

func extractDuration(description string) time.Duration {
	for _, p := range durationPatterns {
		if m := p.FindStringSubmatch(description); m != nil {
			ms, err := strconv.Atoi(m[1])
			if err == nil {
				return time.Duration(ms) * time.Millisecond
			}
		}
	}
	return 0
}
