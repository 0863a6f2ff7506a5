package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/suncore-erp/suncore/internal/catalog"
	"github.com/suncore-erp/suncore/internal/devices"
	"github.com/suncore-erp/suncore/internal/inventory"
	"github.com/suncore-erp/suncore/internal/sales/draft"
)

type mockRepo struct {
	created  []SaleRecord
	failWith error
	nextID   int64
}

func (m *mockRepo) CreateSale(ctx context.Context, rec SaleRecord) (*Sale, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.created = append(m.created, rec)
	m.nextID++
	sale := rec.Sale
	sale.ID = m.nextID
	sale.Code = saleCode(sale.ID)
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	return &sale, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Sale, error) {
	return nil, ErrNotFound
}

func (m *mockRepo) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return nil, 0, nil
}

type stubCatalog struct {
	products map[int64]*catalog.Product
}

func (s *stubCatalog) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, catalog.ErrNotFound
}

type stubDevices struct {
	unavailable map[string]bool
}

func (s *stubDevices) EnsureAvailable(ctx context.Context, serials []string) error {
	for _, serial := range serials {
		if s.unavailable[serial] {
			return devices.ErrNotAvailable
		}
	}
	return nil
}

type stubInventory struct {
	posted   []inventory.OutboundInput
	failWith error
}

func (s *stubInventory) PostOutbound(ctx context.Context, input inventory.OutboundInput) (inventory.StockCardEntry, error) {
	if s.failWith != nil {
		return inventory.StockCardEntry{}, s.failWith
	}
	s.posted = append(s.posted, input)
	return inventory.StockCardEntry{Code: input.Code}, nil
}

type fixture struct {
	svc     *Service
	manager *DraftManager
	repo    *mockRepo
	inv     *stubInventory
	dev     *stubDevices
}

func newFixture() *fixture {
	manager := NewDraftManager()
	repo := &mockRepo{}
	inv := &stubInventory{}
	dev := &stubDevices{unavailable: map[string]bool{}}
	cat := &stubCatalog{products: map[int64]*catalog.Product{
		5: {ID: 5, Name: "Solar Home Kit", UnitPrice: 400, Currency: "USD"},
		9: {ID: 9, Name: "Lantern", UnitPrice: 30, Currency: "USD"},
	}}
	svc := NewService(manager, repo, cat, dev, inv, nil, nil)
	return &fixture{svc: svc, manager: manager, repo: repo, inv: inv, dev: dev}
}

func validGuarantor() draft.GuarantorDetails {
	return draft.GuarantorDetails{
		FullName:    "Ama Mensah",
		PhoneNumber: "0244123456",
		Email:       "ama@example.com",
		HomeAddress: "12 Ridge Road, Accra",
		DateOfBirth: "1985-04-12",
		Identification: draft.IdentificationDetails{
			IDType:         "passport",
			IDNumber:       "G1234567",
			IssuingCountry: "GH",
			FullNameAsOnID: "Ama Mensah",
		},
	}
}

func validNextOfKin() draft.NextOfKinDetails {
	return draft.NextOfKinDetails{
		FullName:     "Kofi Mensah",
		Relationship: "brother",
		PhoneNumber:  "0244654321",
		Email:        "kofi@example.com",
		DateOfBirth:  "1990-09-01",
	}
}

func fillOneOffDraft(t *testing.T, store *draft.Store) {
	t.Helper()
	require.Nil(t, store.SetCategory(draft.CategoryInventory))
	require.Nil(t, store.AddCustomer(draft.CustomerRef{ID: 11, Name: "Efua"}))
	require.Nil(t, store.AddLineItem(5))
	require.Nil(t, store.SetQuantity(5, 2))
	require.Nil(t, store.SetParameters(5, draft.Parameters{PaymentMode: draft.PaymentModeOneOff}))
	require.Nil(t, store.SetDevices(5, []string{"SN-1", "SN-2"}))
}

func TestSaleCodeDerivedFromID(t *testing.T) {
	require.Equal(t, "SALE-000001", saleCode(1))
	require.Equal(t, "SALE-001234", saleCode(1234))
	require.NotEqual(t, saleCode(41), saleCode(42))
}

func TestSubmitWithoutDraft(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.Submit(context.Background(), "no-such-session", 1)
	require.ErrorIs(t, err, ErrEmptyDraft)
}

func TestSubmitIncompleteDraftKeepsDraft(t *testing.T) {
	f := newFixture()
	store := f.manager.Get("sess")
	require.Nil(t, store.SetCategory(draft.CategoryProduct))

	_, verrs, err := f.svc.Submit(context.Background(), "sess", 1)
	require.NoError(t, err)
	require.NotEmpty(t, verrs)
	require.Empty(t, f.repo.created)

	_, ok := f.manager.Peek("sess")
	require.True(t, ok, "failed submission must keep the draft")
}

func TestSubmitOneOffInventorySale(t *testing.T) {
	f := newFixture()
	fillOneOffDraft(t, f.manager.Get("sess"))

	sale, verrs, err := f.svc.Submit(context.Background(), "sess", 7)
	require.NoError(t, err)
	require.Nil(t, verrs)
	require.NotNil(t, sale)

	// 2 x 400 with no discount or misc costs
	require.InDelta(t, 800.0, sale.Total, 0.001)
	require.Len(t, sale.Items, 1)
	require.InDelta(t, 400.0, sale.Items[0].UnitPrice, 0.001)
	require.Empty(t, f.repo.created[0].Contracts)

	require.Len(t, f.inv.posted, 1)
	require.InDelta(t, 2.0, f.inv.posted[0].Qty, 0.001)
	require.Equal(t, "sales", f.inv.posted[0].RefModule)

	_, ok := f.manager.Peek("sess")
	require.False(t, ok, "successful submission must drop the draft")
}

func TestSubmitProductCategorySkipsInventory(t *testing.T) {
	f := newFixture()
	store := f.manager.Get("sess")
	require.Nil(t, store.SetCategory(draft.CategoryProduct))
	require.Nil(t, store.AddCustomer(draft.CustomerRef{ID: 11}))
	require.Nil(t, store.AddLineItem(9))
	require.Nil(t, store.SetParameters(9, draft.Parameters{PaymentMode: draft.PaymentModeOneOff}))
	require.Nil(t, store.SetDevices(9, []string{"SN-9"}))

	_, verrs, err := f.svc.Submit(context.Background(), "sess", 1)
	require.NoError(t, err)
	require.Nil(t, verrs)
	require.Empty(t, f.inv.posted, "PRODUCT category must not touch stock")
}

func TestSubmitInstallmentCreatesContract(t *testing.T) {
	f := newFixture()
	store := f.manager.Get("sess")
	require.Nil(t, store.SetCategory(draft.CategoryInventory))
	require.Nil(t, store.AddCustomer(draft.CustomerRef{ID: 21}))
	require.Nil(t, store.AddLineItem(5))
	require.Nil(t, store.SetParameters(5, draft.Parameters{
		PaymentMode:              draft.PaymentModeInstallment,
		InstallmentDuration:      10,
		InstallmentStartingPrice: 100,
	}))
	require.Nil(t, store.SetDevices(5, []string{"SN-1"}))
	require.Nil(t, store.SetGuarantor(5, validGuarantor()))
	require.Nil(t, store.SetNextOfKin(validNextOfKin()))

	sale, verrs, err := f.svc.Submit(context.Background(), "sess", 1)
	require.NoError(t, err)
	require.Nil(t, verrs)
	require.NotNil(t, sale)

	require.Len(t, f.repo.created[0].Contracts, 1)
	contract := f.repo.created[0].Contracts[0]
	require.Equal(t, int64(21), contract.CustomerID)
	require.Equal(t, 10, contract.DurationMonths)
	// (400 - 100) / 10
	require.InDelta(t, 30.0, contract.MonthlyAmount, 0.001)
	require.NotEmpty(t, contract.Guarantor)
	require.NotEmpty(t, contract.NextOfKin)
}

func TestSubmitUnavailableDevice(t *testing.T) {
	f := newFixture()
	fillOneOffDraft(t, f.manager.Get("sess"))
	f.dev.unavailable["SN-2"] = true

	_, verrs, err := f.svc.Submit(context.Background(), "sess", 1)
	require.NoError(t, err)
	require.NotEmpty(t, verrs)
	require.Empty(t, f.repo.created)

	_, ok := f.manager.Peek("sess")
	require.True(t, ok)
}

func TestSubmitUnknownProduct(t *testing.T) {
	f := newFixture()
	store := f.manager.Get("sess")
	require.Nil(t, store.SetCategory(draft.CategoryProduct))
	require.Nil(t, store.AddCustomer(draft.CustomerRef{ID: 11}))
	require.Nil(t, store.AddLineItem(404))
	require.Nil(t, store.SetParameters(404, draft.Parameters{PaymentMode: draft.PaymentModeOneOff}))
	require.Nil(t, store.SetDevices(404, []string{"SN-X"}))

	_, verrs, err := f.svc.Submit(context.Background(), "sess", 1)
	require.NoError(t, err)
	require.Len(t, verrs, 1)
	require.Equal(t, []string{"saleItems", "product:404"}, verrs[0].Path)
}

func TestSubmitRepositoryFailureKeepsDraft(t *testing.T) {
	f := newFixture()
	fillOneOffDraft(t, f.manager.Get("sess"))
	f.repo.failWith = errors.New("connection lost")

	_, verrs, err := f.svc.Submit(context.Background(), "sess", 1)
	require.Error(t, err)
	require.Nil(t, verrs)

	_, ok := f.manager.Peek("sess")
	require.True(t, ok, "backend failure must keep the draft")
}

func TestCancelDropsDraft(t *testing.T) {
	f := newFixture()
	f.manager.Get("sess")
	f.svc.Cancel("sess")
	_, ok := f.manager.Peek("sess")
	require.False(t, ok)
}
