package workflow

import (
	"fmt"

	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
)

// Target names an element by an ordered ladder of locators. The ladder
// is tried top to bottom, the first locator that yields a displayed
// element wins. Index picks the n-th match when a locator is expected
// to hit several elements (ordinal text fields share one class).
type Target struct {
	Name     string
	Locators []driver.Locator
	Index    int
}

func xp(v string) driver.Locator {
	return driver.Locator{Strategy: driver.ByXPath, Value: v}
}

func cls(v string) driver.Locator {
	return driver.Locator{Strategy: driver.ByClass, Value: v}
}

func uia(v string) driver.Locator {
	return driver.Locator{Strategy: driver.ByUIAutomator, Value: v}
}

var nextButtonLadder = []driver.Locator{
	uia(`new UiSelector().textContains("Next").clickable(true).enabled(true)`),
	xp(`//*[contains(@text, 'Next')]`),
	xp(`//android.widget.Button[contains(@text, 'Next')]`),
}

func createAccountButton() Target {
	return Target{
		Name: "create account button",
		Locators: []driver.Locator{
			xp(`//*[contains(@text, 'CREATE NEW ACCOUNT')]`),
			xp(`//*[contains(@text, 'Create new account')]`),
			xp(`//android.widget.Button[contains(@text, 'CREATE')]`),
			xp(`//*[contains(@content-desc, 'Create')]`),
		},
	}
}

func emailField() Target {
	return Target{
		Name: "email field",
		Locators: []driver.Locator{
			xp(`//*[contains(@hint, 'email')]`),
			xp(`//*[contains(@hint, 'Email')]`),
			cls("android.widget.EditText"),
			xp(`//*[contains(@content-desc, 'email')]`),
		},
	}
}

func passwordField() Target {
	return Target{
		Name: "password field",
		Locators: []driver.Locator{
			xp(`//*[contains(@hint, 'Password')]`),
			xp(`//*[contains(@hint, 'password')]`),
			cls("android.widget.EditText"),
			xp(`//*[@content-desc='Password']`),
		},
	}
}

func nextButton(after string) Target {
	return Target{
		Name:     "Next button after " + after,
		Locators: nextButtonLadder,
	}
}

func dayDropdown() Target {
	return Target{
		Name: "day dropdown",
		Locators: []driver.Locator{
			xp(`//*[contains(@text, 'Day')]`),
			xp(`//*[contains(@hint, 'Day')]`),
			xp(`//android.widget.Spinner[1]`),
			xp(`//*[contains(@content-desc, 'Day')]`),
		},
	}
}

func monthDropdown() Target {
	return Target{
		Name: "month dropdown",
		Locators: []driver.Locator{
			xp(`//*[contains(@text, 'Month')]`),
			xp(`//*[contains(@hint, 'Month')]`),
			xp(`//android.widget.Spinner[2]`),
			xp(`//*[contains(@content-desc, 'Month')]`),
		},
	}
}

// dropdownOption targets a popup entry by its visible text.
func dropdownOption(label, value string) Target {
	return Target{
		Name: label + " option " + value,
		Locators: []driver.Locator{
			xp(fmt.Sprintf(`//*[@text='%s']`, value)),
			xp(fmt.Sprintf(`//*[contains(@text, '%s')]`, value)),
		},
	}
}

// yearField is the last text input on the details screen.
func yearField() Target {
	return Target{
		Name: "year field",
		Locators: []driver.Locator{
			xp(`//*[contains(@hint, 'Year')]`),
			xp(`//*[contains(@hint, 'year')]`),
			cls("android.widget.EditText"),
		},
		Index: -1,
	}
}

func firstNameField() Target {
	return Target{
		Name: "first name field",
		Locators: []driver.Locator{
			xp(`//*[contains(@hint, 'First')]`),
			xp(`//*[contains(@hint, 'first')]`),
			cls("android.widget.EditText"),
		},
	}
}

func lastNameField() Target {
	return Target{
		Name: "last name field",
		Locators: []driver.Locator{
			uia(`new UiSelector().className("android.widget.EditText").instance(1)`),
			xp(`//*[contains(@hint, 'Last')]`),
			xp(`//*[contains(@hint, 'last')]`),
		},
	}
}

func captchaButton() Target {
	return Target{
		Name: "press and hold button",
		Locators: []driver.Locator{
			uia(`new UiSelector().className("android.widget.Button").textContains("Press").clickable(true).enabled(true)`),
			xp(`//android.widget.Button[contains(@text,'Press')]`),
			xp(`//*[contains(@text, 'Press and hold')]`),
			xp(`//*[contains(@content-desc, 'Press')]`),
		},
	}
}

func progressBar() Target {
	return Target{
		Name:     "progress bar",
		Locators: []driver.Locator{cls("android.widget.ProgressBar")},
	}
}

// postAuthButtons lists the interstitial dismiss buttons in priority
// order. Earlier entries are tried first on every pass.
func postAuthButtons() []Target {
	upper := func(s string) string {
		return fmt.Sprintf(
			`//*[contains(translate(@text,'abcdefghijklmnopqrstuvwxyz','ABCDEFGHIJKLMNOPQRSTUVWXYZ'),'%s')]`, s)
	}
	return []Target{
		{Name: "maybe later button", Locators: []driver.Locator{
			xp(`//*[@text='MAYBE LATER']`),
			xp(upper("MAYBE LATER")),
			xp(`//*[contains(@text,'Maybe later')]`),
			xp(`//*[contains(@content-desc,'Maybe later')]`),
		}},
		{Name: "next button", Locators: []driver.Locator{
			xp(`//*[@text='NEXT']`),
			xp(upper("NEXT")),
			xp(`//*[contains(@text,'Next')]`),
			xp(`//*[contains(@content-desc,'Next')]`),
		}},
		{Name: "accept button", Locators: []driver.Locator{
			xp(`//*[@text='ACCEPT']`),
			xp(upper("ACCEPT")),
			xp(`//*[contains(@text,'Accept')]`),
			xp(`//*[contains(@content-desc,'Accept')]`),
		}},
		{Name: "continue button", Locators: []driver.Locator{
			xp(`//*[@text='CONTINUE TO OUTLOOK']`),
			xp(upper("CONTINUE TO OUTLOOK")),
			xp(`//*[contains(@text,'Continue to Outlook')]`),
			xp(`//*[contains(@content-desc,'Continue to Outlook')]`),
		}},
		{Name: "skip button", Locators: []driver.Locator{
			xp(`//*[contains(@text,'Not now')]`),
			xp(`//*[contains(@text,'Skip')]`),
			xp(`//*[contains(@text,'No thanks')]`),
			xp(`//*[contains(@text,'Maybe later')]`),
		}},
	}
}

// inboxLandmarks are elements that only exist once the mailbox loaded.
func inboxLandmarks() []Target {
	return []Target{
		{Name: "search bar", Locators: []driver.Locator{
			xp(`//*[@text='Search']`),
			xp(`//*[contains(@content-desc,'Search')]`),
			xp(`//*[contains(@text, 'Search')]`),
		}},
		{Name: "inbox header", Locators: []driver.Locator{
			xp(`//*[contains(@text, 'Inbox')]`),
			xp(`//*[contains(@content-desc, 'Inbox')]`),
		}},
		{Name: "compose button", Locators: []driver.Locator{
			xp(`//*[contains(@text, 'Compose')]`),
			xp(`//*[contains(@content-desc, 'Compose')]`),
		}},
	}
}
