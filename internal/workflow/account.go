package workflow

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Account carries the identity the flow signs up with. Birth date is
// kept both raw (YYYY-MM-DD) and split into the components the form
// expects: numeric day, full month name, four digit year.
type Account struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth string
	BirthDay    int
	BirthMonth  string
	BirthYear   int
}

var firstNames = []string{
	"mary", "john", "david", "michael", "sarah", "jennifer", "william",
	"elizabeth", "robert", "lisa", "james", "maria", "christopher",
	"nancy", "daniel", "karen", "matthew", "anthony", "helen", "mark",
}

var lastNames = []string{
	"smith", "johnson", "williams", "brown", "jones", "garcia", "miller",
	"davis", "rodriguez", "martinez", "wilson", "anderson", "thomas",
	"taylor", "moore", "jackson", "lee", "clark", "walker", "young",
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// defaultPassword is used for every generated account.
const defaultPassword = "wrfyh@6498$"

// GenerateAccount builds an account from explicit identity inputs.
// dob must be YYYY-MM-DD.
func GenerateAccount(firstName, lastName, dob string) (Account, error) {
	day, month, year, err := parseBirthDate(dob)
	if err != nil {
		return Account{}, err
	}
	first := strings.ToLower(strings.ReplaceAll(firstName, " ", ""))
	last := strings.ToLower(strings.ReplaceAll(lastName, " ", ""))
	username := fmt.Sprintf("%s%d%s%d", first, 100+rand.Intn(900), last, 100+rand.Intn(900))
	return Account{
		Username:    username,
		Email:       username + "@outlook.com",
		Password:    defaultPassword,
		FirstName:   titleCase(firstName),
		LastName:    titleCase(lastName),
		DateOfBirth: dob,
		BirthDay:    day,
		BirthMonth:  month,
		BirthYear:   year,
	}, nil
}

// DemoAccount builds an account from the name pools with a working-age
// birth date.
func DemoAccount() Account {
	first := firstNames[rand.Intn(len(firstNames))]
	last := lastNames[rand.Intn(len(lastNames))]

	year := 1980 + rand.Intn(26)
	month := 1 + rand.Intn(12)
	day := 1 + rand.Intn(daysInMonth(month, year))
	dob := fmt.Sprintf("%04d-%02d-%02d", year, month, day)

	acc, err := GenerateAccount(first, last, dob)
	if err != nil {
		// Generated dates always parse, this cannot happen.
		panic(err)
	}
	return acc
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func daysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}

func parseBirthDate(dob string) (day int, month string, year int, err error) {
	t, perr := time.Parse("2006-01-02", dob)
	if perr != nil {
		return 0, "", 0, fmt.Errorf("invalid date format, expected YYYY-MM-DD, got %q", dob)
	}
	return t.Day(), monthNames[int(t.Month())-1], t.Year(), nil
}
