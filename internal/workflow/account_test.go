package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountDerivesBirthComponents(t *testing.T) {
	acc, err := GenerateAccount("Mary", "Smith", "1995-01-15")
	require.NoError(t, err)

	assert.Equal(t, "Mary", acc.FirstName)
	assert.Equal(t, "Smith", acc.LastName)
	assert.Equal(t, 15, acc.BirthDay)
	assert.Equal(t, "January", acc.BirthMonth)
	assert.Equal(t, 1995, acc.BirthYear)
	assert.Equal(t, "1995-01-15", acc.DateOfBirth)
	assert.NotEmpty(t, acc.Password)
}

func TestGenerateAccountEmailScheme(t *testing.T) {
	acc, err := GenerateAccount("Mary Ann", "De Smith", "1990-12-01")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(acc.Email, "maryann"))
	assert.True(t, strings.HasSuffix(acc.Email, "@outlook.com"))
	assert.Contains(t, acc.Email, "desmith")
	assert.Equal(t, acc.Username+"@outlook.com", acc.Email)
}

func TestGenerateAccountRejectsBadDate(t *testing.T) {
	_, err := GenerateAccount("Mary", "Smith", "15/01/1995")
	assert.Error(t, err)
}

func TestDemoAccountIsComplete(t *testing.T) {
	for i := 0; i < 20; i++ {
		acc := DemoAccount()
		assert.NotEmpty(t, acc.Email)
		assert.NotEmpty(t, acc.FirstName)
		assert.NotEmpty(t, acc.LastName)
		assert.GreaterOrEqual(t, acc.BirthYear, 1980)
		assert.LessOrEqual(t, acc.BirthYear, 2005)
		assert.GreaterOrEqual(t, acc.BirthDay, 1)
		assert.LessOrEqual(t, acc.BirthDay, 31)
		assert.Contains(t, monthNames, acc.BirthMonth)
	}
}

func TestGateChecklistOrder(t *testing.T) {
	assert.Equal(t, []string{
		"details_day_selected",
		"details_day_value_selected",
		"details_month_selected",
		"details_month_value_selected",
		"details_year_typed",
	}, GateNames(StepDetails))

	g := &Gates{}
	assert.Equal(t, "details_day_selected", g.NextPending(StepDetails))
	assert.Equal(t, "details_day_selected", g.SatisfyNext(StepDetails))
	assert.Equal(t, "details_day_value_selected", g.NextPending(StepDetails))

	g.SatisfyAll(StepDetails)
	assert.True(t, g.Satisfied(StepDetails))
	assert.Equal(t, "", g.SatisfyNext(StepDetails))
}

func TestStepProgressTableIsMonotonic(t *testing.T) {
	prev := -1
	for s := StepInit; s <= StepCleanup; s++ {
		assert.Greater(t, s.Progress(), prev, "step %s", s)
		prev = s.Progress()
	}
	assert.True(t, StepCleanup.Terminal())
	assert.True(t, StepError.Terminal())
	assert.Equal(t, StepCleanup, StepCleanup.Next())
}
