package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGuarantor() GuarantorDetails {
	return GuarantorDetails{
		FullName:    "Adaeze Okafor",
		PhoneNumber: "+2348012345678",
		Email:       "adaeze@example.com",
		HomeAddress: "12 Marina Road, Lagos",
		DateOfBirth: "1988-04-17",
		Nationality: "NG",
		Identification: IdentificationDetails{
			IDType:         "NATIONAL_ID",
			IDNumber:       "A1234567",
			IssuingCountry: "NG",
			IssueDate:      "2020-01-15",
			ExpirationDate: "2030-01-15",
			FullNameAsOnID: "Adaeze Okafor",
		},
	}
}

func validNextOfKin() NextOfKinDetails {
	return NextOfKinDetails{
		FullName:     "Chidi Okafor",
		Relationship: "Brother",
		PhoneNumber:  "+2348098765432",
		Email:        "chidi@example.com",
		DateOfBirth:  "1990-09-02",
	}
}

func TestAddLineItemIsIdempotent(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(7))
	require.Nil(t, s.AddLineItem(7))

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(7), snap.Items[0].ProductID)
	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestAddLineItemRejectsInvalidProduct(t *testing.T) {
	s := NewStore()
	issues := s.AddLineItem(0)
	require.Len(t, issues, 1)
	assert.Equal(t, "productId", issues[0].Field)
}

func TestRemoveLineItemClearsChildren(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(3))
	require.Nil(t, s.SetGuarantor(3, validGuarantor()))
	require.Nil(t, s.SetDevices(3, []string{"d1", "d2"}))
	require.Nil(t, s.SetMiscellaneousCosts(3, map[string]float64{"installation": 1500}))

	s.RemoveLineItem(3)

	_, ok := s.LineItem(3)
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot().Items)

	// Re-adding the product starts from a clean slate.
	require.Nil(t, s.AddLineItem(3))
	it, ok := s.LineItem(3)
	require.True(t, ok)
	assert.Nil(t, it.Guarantor)
	assert.Empty(t, it.Devices)
	assert.Nil(t, it.MiscellaneousPrices)
}

func TestCustomerSelectionSetSemantics(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 11, Name: "Amina Bello"}))
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 11, Name: "Amina Bello"}))
	require.Len(t, s.Snapshot().Customers, 1)

	s.RemoveCustomer(99) // absent id, no-op
	require.Len(t, s.Snapshot().Customers, 1)

	s.RemoveCustomer(11)
	assert.Empty(t, s.Snapshot().Customers)
}

func TestSetParametersRejectsBadInstallmentTerms(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(5))

	issues := s.SetParameters(5, Parameters{PaymentMode: PaymentModeInstallment})
	require.NotEmpty(t, issues)

	it, ok := s.LineItem(5)
	require.True(t, ok)
	assert.Nil(t, it.Params, "failed set must not mutate the item")
}

func TestSetGuarantorRejectionDoesNotMutate(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(5))

	bad := validGuarantor()
	bad.Email = "not-an-email"
	issues := s.SetGuarantor(5, bad)
	require.NotEmpty(t, issues)

	found := false
	for _, issue := range issues {
		if issue.Field == "email" {
			found = true
		}
	}
	assert.True(t, found, "issues should mention email, got %v", issues)

	it, ok := s.LineItem(5)
	require.True(t, ok)
	assert.Nil(t, it.Guarantor, "prior (unset) guarantor must be preserved")

	// Same holds when a valid guarantor is already in place.
	good := validGuarantor()
	require.Nil(t, s.SetGuarantor(5, good))
	require.NotEmpty(t, s.SetGuarantor(5, bad))
	it, _ = s.LineItem(5)
	require.NotNil(t, it.Guarantor)
	assert.Equal(t, good.Email, it.Guarantor.Email)
}

func TestSetDevicesRequiresAtLeastOne(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(5))

	issues := s.SetDevices(5, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "devices", issues[0].Field)

	issues = s.SetDevices(5, []string{""})
	require.Len(t, issues, 1)

	require.Nil(t, s.SetDevices(5, []string{"d1", "d1", "d2"}))
	it, _ := s.LineItem(5)
	assert.Equal(t, []string{"d1", "d2"}, it.Devices)
}

func TestRemoveSlicesLeaveRestIntact(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetParameters(5, Parameters{PaymentMode: PaymentModeOneOff}))
	require.Nil(t, s.SetGuarantor(5, validGuarantor()))
	require.Nil(t, s.SetDevices(5, []string{"d1"}))
	require.Nil(t, s.SetMiscellaneousCosts(5, map[string]float64{"transport": 200}))

	s.RemoveGuarantor(5)
	it, _ := s.LineItem(5)
	assert.Nil(t, it.Guarantor)
	assert.NotNil(t, it.Params)
	assert.Equal(t, []string{"d1"}, it.Devices)

	s.RemoveDevices(5)
	it, _ = s.LineItem(5)
	assert.Empty(t, it.Devices)
	assert.NotNil(t, it.MiscellaneousPrices)

	s.RemoveMiscellaneousCosts(5)
	it, _ = s.LineItem(5)
	assert.Nil(t, it.MiscellaneousPrices)
	assert.NotNil(t, it.Params)
}

func TestSetMiscellaneousCostsValidation(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(5))

	issues := s.SetMiscellaneousCosts(5, map[string]float64{"wiring": -5})
	require.NotEmpty(t, issues)

	it, _ := s.LineItem(5)
	assert.Nil(t, it.MiscellaneousPrices)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetDevices(5, []string{"d1"}))
	require.Nil(t, s.SetMiscellaneousCosts(5, map[string]float64{"transport": 200}))

	snap := s.Snapshot()
	snap.Items[0].Devices[0] = "tampered"
	snap.Items[0].MiscellaneousPrices["transport"] = -1

	it, _ := s.LineItem(5)
	assert.Equal(t, []string{"d1"}, it.Devices)
	assert.Equal(t, 200.0, it.MiscellaneousPrices["transport"])
}

func TestResetClearsEverything(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.SetCategory(CategoryInventory))
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 1}))
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetNextOfKin(validNextOfKin()))

	s.Reset()
	snap := s.Snapshot()
	assert.Empty(t, snap.Category)
	assert.Empty(t, snap.Customers)
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.NextOfKin)
}

func TestSettersOnMissingLineItem(t *testing.T) {
	s := NewStore()
	for _, issues := range [][]Issue{
		s.SetParameters(42, Parameters{PaymentMode: PaymentModeOneOff}),
		s.SetGuarantor(42, validGuarantor()),
		s.SetDevices(42, []string{"d1"}),
		s.SetMiscellaneousCosts(42, map[string]float64{"x": 1}),
		s.SetQuantity(42, 2),
	} {
		require.Len(t, issues, 1)
		assert.Equal(t, "productId", issues[0].Field)
	}
}
