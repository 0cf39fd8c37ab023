package workflow

// Step is a screen-gated stage of the signup flow. Steps only move
// forward, there is no back edge in the machine.
type Step int

const (
	StepInit Step = iota
	StepWelcome
	StepEmail
	StepPassword
	StepDetails
	StepName
	StepCaptcha
	StepAuthWait
	StepPostAuth
	StepVerify
	StepCleanup
	StepError
)

var stepNames = map[Step]string{
	StepInit:     "init",
	StepWelcome:  "welcome",
	StepEmail:    "email",
	StepPassword: "password",
	StepDetails:  "details",
	StepName:     "name",
	StepCaptcha:  "captcha",
	StepAuthWait: "auth_wait",
	StepPostAuth: "post_auth",
	StepVerify:   "verify",
	StepCleanup:  "cleanup",
	StepError:    "error",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Next returns the successor step in the forward chain. Terminal steps
// return themselves.
func (s Step) Next() Step {
	if s.Terminal() {
		return s
	}
	return s + 1
}

// Terminal reports whether the flow ends at this step.
func (s Step) Terminal() bool {
	return s == StepCleanup || s == StepError
}

// stepProgress maps each step to the milestone reached when the flow
// enters it. Progress is monotonic, the engine never writes a smaller
// value over a larger one.
var stepProgress = map[Step]int{
	StepInit:     5,
	StepWelcome:  10,
	StepEmail:    25,
	StepPassword: 35,
	StepDetails:  50,
	StepName:     65,
	StepCaptcha:  75,
	StepAuthWait: 85,
	StepPostAuth: 90,
	StepVerify:   95,
	StepCleanup:  100,
}

// Progress returns the milestone percentage for entering the step.
// StepError carries no milestone of its own, the run keeps whatever
// progress it had.
func (s Step) Progress() int {
	return stepProgress[s]
}

// welcomeActionProgress is reported once the create-account button on
// the welcome screen has been pressed, before the email screen loads.
const welcomeActionProgress = 15
