package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installmentStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.Nil(t, s.SetCategory(CategoryInventory))
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 9, Name: "Amina Bello"}))
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetParameters(5, Parameters{
		PaymentMode:              PaymentModeInstallment,
		InstallmentDuration:      6,
		InstallmentStartingPrice: 5000,
	}))
	require.Nil(t, s.SetDevices(5, []string{"d1"}))
	return s
}

func hasPath(errs []ValidationError, path ...string) bool {
	for _, e := range errs {
		if len(e.Path) != len(path) {
			continue
		}
		match := true
		for i := range path {
			if e.Path[i] != path[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestInstallmentRequiresEscortData(t *testing.T) {
	s := installmentStore(t)

	payload, errs := BuildPayload(s.Snapshot())
	require.Nil(t, payload)
	require.NotEmpty(t, errs)
	assert.True(t, hasPath(errs, "nextOfKinDetails", "guarantorDetails"),
		"expected combined escort-data error, got %v", errs)
}

func TestInstallmentWithOnlyNextOfKinStillFails(t *testing.T) {
	s := installmentStore(t)
	require.Nil(t, s.SetNextOfKin(validNextOfKin()))

	_, errs := BuildPayload(s.Snapshot())
	assert.True(t, hasPath(errs, "nextOfKinDetails", "guarantorDetails"))
}

func TestOneOffDoesNotRequireEscortData(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.SetCategory(CategoryInventory))
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 9}))
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetParameters(5, Parameters{PaymentMode: PaymentModeOneOff}))
	require.Nil(t, s.SetDevices(5, []string{"d1"}))

	payload, errs := BuildPayload(s.Snapshot())
	require.Empty(t, errs)
	require.NotNil(t, payload)
	assert.Nil(t, payload.GuarantorDetails)
	assert.Nil(t, payload.NextOfKinDetails)
}

func TestNoDevicesBlocksSubmission(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.SetCategory(CategoryProduct))
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 9}))
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetParameters(5, Parameters{PaymentMode: PaymentModeOneOff}))

	payload, errs := BuildPayload(s.Snapshot())
	require.Nil(t, payload)
	require.NotEmpty(t, errs)
	assert.True(t, hasPath(errs, "saleItems", "product:5"))
}

func TestStructuralErrors(t *testing.T) {
	_, errs := BuildPayload(Draft{})
	assert.True(t, hasPath(errs, "category"))
	assert.True(t, hasPath(errs, "customers"))
	assert.True(t, hasPath(errs, "saleItems"))
}

func TestMissingParametersBlocksSubmission(t *testing.T) {
	s := NewStore()
	require.Nil(t, s.SetCategory(CategoryInventory))
	require.Nil(t, s.AddCustomer(CustomerRef{ID: 9}))
	require.Nil(t, s.AddLineItem(5))
	require.Nil(t, s.SetDevices(5, []string{"d1"}))

	payload, errs := BuildPayload(s.Snapshot())
	require.Nil(t, payload)
	assert.True(t, hasPath(errs, "saleItems", "product:5"))
}

func TestRoundTripFidelity(t *testing.T) {
	s := installmentStore(t)
	require.Nil(t, s.AddLineItem(8))
	discount := 250.0
	require.Nil(t, s.SetParameters(8, Parameters{PaymentMode: PaymentModeOneOff, Discount: &discount}))
	require.Nil(t, s.SetDevices(8, []string{"d7", "d8"}))
	require.Nil(t, s.SetMiscellaneousCosts(8, map[string]float64{"installation": 1500}))
	require.Nil(t, s.SetGuarantor(5, validGuarantor()))
	require.Nil(t, s.SetNextOfKin(validNextOfKin()))
	require.Nil(t, s.SetIdentification(validGuarantor().Identification))

	payload, errs := BuildPayload(s.Snapshot())
	require.Empty(t, errs)
	require.NotNil(t, payload)

	assert.Equal(t, CategoryInventory, payload.Category)
	assert.Equal(t, int64(9), payload.CustomerID)
	require.Len(t, payload.SaleItems, 2)

	first := payload.SaleItems[0]
	assert.Equal(t, int64(5), first.ProductID)
	assert.Equal(t, PaymentModeInstallment, first.PaymentMode)
	assert.Equal(t, 1, first.Quantity, "quantity defaults to 1")
	assert.Equal(t, 6, first.InstallmentDuration)
	assert.Equal(t, 5000.0, first.InstallmentStartingPrice)
	assert.Equal(t, []string{"d1"}, first.Devices)

	second := payload.SaleItems[1]
	assert.Equal(t, int64(8), second.ProductID)
	assert.Equal(t, PaymentModeOneOff, second.PaymentMode)
	assert.Equal(t, 250.0, second.Discount)
	assert.Equal(t, []string{"d7", "d8"}, second.Devices)
	assert.Equal(t, 1500.0, second.MiscellaneousPrices["installation"])

	require.NotNil(t, payload.GuarantorDetails)
	assert.Equal(t, "Adaeze Okafor", payload.GuarantorDetails.FullName)
	require.NotNil(t, payload.NextOfKinDetails)
	require.NotNil(t, payload.IdentificationDetails)
}

func TestBuildPayloadDoesNotMutateDraft(t *testing.T) {
	s := installmentStore(t)
	require.Nil(t, s.SetGuarantor(5, validGuarantor()))
	require.Nil(t, s.SetNextOfKin(validNextOfKin()))

	before := s.Snapshot()
	payload, errs := BuildPayload(before)
	require.Empty(t, errs)

	payload.SaleItems[0].Devices[0] = "tampered"
	after := s.Snapshot()
	assert.Equal(t, []string{"d1"}, after.Items[0].Devices)
}
