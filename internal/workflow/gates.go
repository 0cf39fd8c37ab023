package workflow

// Gates tracks which per-step checkpoints have been satisfied. Each
// step owns an ordered checklist, and the planner only ever works on
// the earliest unsatisfied entry, so a later gate can never flip while
// an earlier one is still pending.
type Gates struct {
	Email    EmailGates
	Password PasswordGates
	Details  DetailsGates
	Name     NameGates
}

type EmailGates struct {
	Typed bool
}

type PasswordGates struct {
	Typed bool
}

type DetailsGates struct {
	DaySelected        bool
	DayValueSelected   bool
	MonthSelected      bool
	MonthValueSelected bool
	YearTyped          bool
}

type NameGates struct {
	FirstTyped bool
	LastTyped  bool
}

// gateRef binds a stable gate name to its storage so checklists can be
// walked in declared order.
type gateRef struct {
	name string
	get  func(*Gates) bool
	set  func(*Gates, bool)
}

var stepChecklists = map[Step][]gateRef{
	StepEmail: {
		{"email_typed",
			func(g *Gates) bool { return g.Email.Typed },
			func(g *Gates, v bool) { g.Email.Typed = v }},
	},
	StepPassword: {
		{"password_typed",
			func(g *Gates) bool { return g.Password.Typed },
			func(g *Gates, v bool) { g.Password.Typed = v }},
	},
	StepDetails: {
		{"details_day_selected",
			func(g *Gates) bool { return g.Details.DaySelected },
			func(g *Gates, v bool) { g.Details.DaySelected = v }},
		{"details_day_value_selected",
			func(g *Gates) bool { return g.Details.DayValueSelected },
			func(g *Gates, v bool) { g.Details.DayValueSelected = v }},
		{"details_month_selected",
			func(g *Gates) bool { return g.Details.MonthSelected },
			func(g *Gates, v bool) { g.Details.MonthSelected = v }},
		{"details_month_value_selected",
			func(g *Gates) bool { return g.Details.MonthValueSelected },
			func(g *Gates, v bool) { g.Details.MonthValueSelected = v }},
		{"details_year_typed",
			func(g *Gates) bool { return g.Details.YearTyped },
			func(g *Gates, v bool) { g.Details.YearTyped = v }},
	},
	StepName: {
		{"first_name_typed",
			func(g *Gates) bool { return g.Name.FirstTyped },
			func(g *Gates, v bool) { g.Name.FirstTyped = v }},
		{"last_name_typed",
			func(g *Gates) bool { return g.Name.LastTyped },
			func(g *Gates, v bool) { g.Name.LastTyped = v }},
	},
}

// NextPending returns the name of the earliest unsatisfied gate for the
// step, or "" when the checklist is complete (or the step has none).
func (g *Gates) NextPending(step Step) string {
	for _, ref := range stepChecklists[step] {
		if !ref.get(g) {
			return ref.name
		}
	}
	return ""
}

// Satisfied reports whether every gate of the step is set.
func (g *Gates) Satisfied(step Step) bool {
	return g.NextPending(step) == ""
}

// SatisfyNext sets the earliest unsatisfied gate of the step and
// returns its name. Setting an already satisfied checklist is a no-op.
func (g *Gates) SatisfyNext(step Step) string {
	for _, ref := range stepChecklists[step] {
		if !ref.get(g) {
			ref.set(g, true)
			return ref.name
		}
	}
	return ""
}

// SatisfyAll marks every gate of the step as done. Used when an
// adaptive decision skips the remainder of a screen.
func (g *Gates) SatisfyAll(step Step) {
	for _, ref := range stepChecklists[step] {
		ref.set(g, true)
	}
}

// GateNames returns the declared checklist order for a step.
func GateNames(step Step) []string {
	refs := stepChecklists[step]
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.name
	}
	return names
}
