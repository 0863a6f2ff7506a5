package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestValidateGuarantor(t *testing.T) {
	assert.Nil(t, ValidateGuarantor(validGuarantor()))

	g := validGuarantor()
	g.FullName = "Al"
	g.PhoneNumber = "12345"
	g.HomeAddress = "x"
	issues := ValidateGuarantor(g)
	assert.ElementsMatch(t, []string{"fullName", "phoneNumber", "homeAddress"}, fields(issues))
}

func TestValidateGuarantorEmbeddedIdentification(t *testing.T) {
	g := validGuarantor()
	g.Identification.IDNumber = "123"
	issues := ValidateGuarantor(g)
	require.Len(t, issues, 1)
	assert.Equal(t, "identificationDetails.idNumber", issues[0].Field)
}

func TestValidateIdentificationDates(t *testing.T) {
	id := validGuarantor().Identification
	assert.Nil(t, ValidateIdentification(id))

	// Empty dates are allowed.
	id.IssueDate = ""
	id.ExpirationDate = ""
	assert.Nil(t, ValidateIdentification(id))

	id.IssueDate = "not a date"
	issues := ValidateIdentification(id)
	require.Len(t, issues, 1)
	assert.Equal(t, "issueDate", issues[0].Field)
	assert.Equal(t, "must be a parseable date", issues[0].Message)
}

func TestValidateNextOfKin(t *testing.T) {
	assert.Nil(t, ValidateNextOfKin(validNextOfKin()))

	n := validNextOfKin()
	n.Relationship = "B"
	n.Email = "nope"
	issues := ValidateNextOfKin(n)
	assert.ElementsMatch(t, []string{"relationship", "email"}, fields(issues))

	// homeAddress and nationality stay optional
	n = validNextOfKin()
	n.HomeAddress = ""
	n.Nationality = ""
	assert.Nil(t, ValidateNextOfKin(n))
}

func TestValidateParameters(t *testing.T) {
	assert.Nil(t, ValidateParameters(Parameters{PaymentMode: PaymentModeOneOff}))

	issues := ValidateParameters(Parameters{PaymentMode: "WEEKLY"})
	require.Len(t, issues, 1)
	assert.Equal(t, "paymentMode", issues[0].Field)

	issues = ValidateParameters(Parameters{PaymentMode: PaymentModeInstallment})
	assert.ElementsMatch(t, []string{"installmentDuration", "installmentStartingPrice"}, fields(issues))

	neg := -1.0
	issues = ValidateParameters(Parameters{PaymentMode: PaymentModeOneOff, Discount: &neg})
	require.Len(t, issues, 1)
	assert.Equal(t, "discount", issues[0].Field)

	assert.Nil(t, ValidateParameters(Parameters{
		PaymentMode:              PaymentModeInstallment,
		InstallmentDuration:      12,
		InstallmentStartingPrice: 2500,
	}))
}

func TestDateLayouts(t *testing.T) {
	for _, ok := range []string{"2024-06-01", "2024-06-01T10:30:00", "2024-06-01T10:30:00Z"} {
		assert.True(t, parseableDate(ok), ok)
	}
	for _, bad := range []string{"", "June 1st", "01/06/2024"} {
		assert.False(t, parseableDate(bad), bad)
	}
}
