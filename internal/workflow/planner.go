package workflow

import "fmt"

// Verb is the kind of interaction an action request asks for.
type Verb string

const (
	VerbClick       Verb = "click"
	VerbType        Verb = "type"
	VerbSelect      Verb = "select_option"
	VerbLongPress   Verb = "long_press"
	VerbWaitAuth    Verb = "wait_auth"
	VerbPostAuthNav Verb = "post_auth_nav"
	VerbVerifyInbox Verb = "verify_inbox"
	VerbAssess      Verb = "assess"
)

// TapPoint is a proportional screen coordinate used as the last rung
// of a click ladder. Values are fractions of the screen size.
type TapPoint struct {
	X float64
	Y float64
}

// ActionRequest is one planned interaction. Targets is an ordered
// ladder of element candidates, TapAt (when set) is the coordinate
// fallback once every target fails.
type ActionRequest struct {
	Tool    string
	Verb    Verb
	Target  Target
	Text    string
	HoldMs  int
	TapAt   *TapPoint
}

// Planner decides the next action from the current step and its
// earliest unsatisfied gate. It never looks past that gate. When
// adaptive is set, repeated failures are routed to the advisor instead
// of the screen reassessment fallback.
type Planner struct {
	adaptive bool
}

// Plan returns the next action for the run state.
func (p *Planner) Plan(st *RunState) ActionRequest {
	// A step that keeps failing means the screen is not what the rule
	// table assumes. Without an advisor, re-derive context from the
	// screen itself instead of hammering the same locator.
	if !p.adaptive && st.ConsecutiveErrors >= escalateAfterErrors {
		return ActionRequest{Tool: "ocr", Verb: VerbAssess}
	}

	acc := st.Account
	switch st.Step {
	case StepWelcome:
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbClick,
			Target: createAccountButton(),
			TapAt:  &TapPoint{X: 0.5, Y: 0.75},
		}

	case StepEmail:
		if !st.Gates.Email.Typed {
			return ActionRequest{
				Tool:   "mobile_ui",
				Verb:   VerbType,
				Target: emailField(),
				Text:   acc.Email,
			}
		}
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbClick,
			Target: nextButton("email"),
		}

	case StepPassword:
		if !st.Gates.Password.Typed {
			return ActionRequest{
				Tool:   "mobile_ui",
				Verb:   VerbType,
				Target: passwordField(),
				Text:   acc.Password,
			}
		}
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbClick,
			Target: nextButton("password"),
		}

	case StepDetails:
		return p.planDetails(st)

	case StepName:
		if !st.Gates.Name.FirstTyped {
			return ActionRequest{
				Tool:   "mobile_ui",
				Verb:   VerbType,
				Target: firstNameField(),
				Text:   acc.FirstName,
			}
		}
		if !st.Gates.Name.LastTyped {
			return ActionRequest{
				Tool:   "mobile_ui",
				Verb:   VerbType,
				Target: lastNameField(),
				Text:   acc.LastName,
			}
		}
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbClick,
			Target: nextButton("name"),
		}

	case StepCaptcha:
		return ActionRequest{
			Tool:   "gestures",
			Verb:   VerbLongPress,
			Target: captchaButton(),
			HoldMs: captchaHoldMs,
			TapAt:  &TapPoint{X: 0.5, Y: 0.6},
		}

	case StepAuthWait:
		return ActionRequest{Tool: "mobile_ui", Verb: VerbWaitAuth}

	case StepPostAuth:
		return ActionRequest{Tool: "navigator", Verb: VerbPostAuthNav}

	case StepVerify:
		return ActionRequest{Tool: "mobile_ui", Verb: VerbVerifyInbox}
	}

	// No scripted action applies, ask the vision assessor what screen
	// we are actually on.
	return ActionRequest{Tool: "ocr", Verb: VerbAssess}
}

func (p *Planner) planDetails(st *RunState) ActionRequest {
	acc := st.Account
	d := &st.Gates.Details
	switch {
	case !d.DaySelected:
		return ActionRequest{Tool: "mobile_ui", Verb: VerbClick, Target: dayDropdown()}
	case !d.DayValueSelected:
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbSelect,
			Target: dropdownOption("day", fmt.Sprintf("%d", acc.BirthDay)),
		}
	case !d.MonthSelected:
		return ActionRequest{Tool: "mobile_ui", Verb: VerbClick, Target: monthDropdown()}
	case !d.MonthValueSelected:
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbSelect,
			Target: dropdownOption("month", acc.BirthMonth),
		}
	case !d.YearTyped:
		return ActionRequest{
			Tool:   "mobile_ui",
			Verb:   VerbType,
			Target: yearField(),
			Text:   fmt.Sprintf("%d", acc.BirthYear),
		}
	}
	return ActionRequest{Tool: "mobile_ui", Verb: VerbClick, Target: nextButton("details")}
}
