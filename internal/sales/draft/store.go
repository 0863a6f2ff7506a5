package draft

import "sync"

// Store is the mutable aggregate for one in-progress sale. One store exists
// per sale-creation session; construct a fresh one per flow and drop it on
// submit success or cancel. All mutations validate first and leave prior
// state untouched when validation fails.
type Store struct {
	mu    sync.Mutex
	draft Draft
}

// NewStore returns an empty draft store.
func NewStore() *Store {
	return &Store{}
}

// SetCategory selects the sale category.
func (s *Store) SetCategory(c Category) []Issue {
	if c != CategoryInventory && c != CategoryProduct {
		return []Issue{{Field: "category", Message: "must be one of INVENTORY, PRODUCT"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Category = c
	return nil
}

// AddCustomer adds a customer reference. Adding an already selected
// customer is a no-op.
func (s *Store) AddCustomer(ref CustomerRef) []Issue {
	if issues := check(ref); issues != nil {
		return issues
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.draft.Customers {
		if c.ID == ref.ID {
			return nil
		}
	}
	s.draft.Customers = append(s.draft.Customers, ref)
	return nil
}

// RemoveCustomer drops a selected customer. Removing an absent id is a no-op.
func (s *Store) RemoveCustomer(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.draft.Customers {
		if c.ID == id {
			s.draft.Customers = append(s.draft.Customers[:i], s.draft.Customers[i+1:]...)
			return
		}
	}
}

// AddLineItem inserts an empty line item for the product if absent.
func (s *Store) AddLineItem(productID int64) []Issue {
	if productID <= 0 {
		return []Issue{{Field: "productId", Message: "is required"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft.item(productID) != nil {
		return nil
	}
	s.draft.Items = append(s.draft.Items, LineItem{ProductID: productID, Quantity: 1})
	return nil
}

// RemoveLineItem deletes the line item and every nested sub-record.
func (s *Store) RemoveLineItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.draft.Items {
		if s.draft.Items[i].ProductID == productID {
			s.draft.Items = append(s.draft.Items[:i], s.draft.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity overrides the default quantity of 1.
func (s *Store) SetQuantity(productID int64, qty int) []Issue {
	if qty <= 0 {
		return []Issue{{Field: "quantity", Message: "must be greater than 0"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.draft.item(productID)
	if it == nil {
		return missingItem(productID)
	}
	it.Quantity = qty
	return nil
}

// SetParameters replaces the line item's payment terms after validation.
func (s *Store) SetParameters(productID int64, p Parameters) []Issue {
	if issues := ValidateParameters(p); issues != nil {
		return issues
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.draft.item(productID)
	if it == nil {
		return missingItem(productID)
	}
	params := p
	it.Params = &params
	return nil
}

// SetGuarantor replaces the line item's guarantor after validation.
func (s *Store) SetGuarantor(productID int64, g GuarantorDetails) []Issue {
	if issues := ValidateGuarantor(g); issues != nil {
		return issues
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.draft.item(productID)
	if it == nil {
		return missingItem(productID)
	}
	guarantor := g
	it.Guarantor = &guarantor
	return nil
}

// RemoveGuarantor clears just the guarantor slice of the line item.
func (s *Store) RemoveGuarantor(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.draft.item(productID); it != nil {
		it.Guarantor = nil
	}
}

// SetDevices sets the device set for a line item. At least one device id is
// required once the devices step is saved; duplicates are collapsed.
func (s *Store) SetDevices(productID int64, deviceIDs []string) []Issue {
	unique := dedupe(deviceIDs)
	if len(unique) == 0 {
		return []Issue{{Field: "devices", Message: "at least one device is required"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.draft.item(productID)
	if it == nil {
		return missingItem(productID)
	}
	it.Devices = unique
	return nil
}

// RemoveDevices clears the device set, leaving the rest of the item intact.
func (s *Store) RemoveDevices(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.draft.item(productID); it != nil {
		it.Devices = nil
	}
}

// SetMiscellaneousCosts replaces the label→amount cost map for a line item.
func (s *Store) SetMiscellaneousCosts(productID int64, prices map[string]float64) []Issue {
	var issues []Issue
	for label, amount := range prices {
		if label == "" {
			issues = append(issues, Issue{Field: "miscellaneousPrices", Message: "cost label is required"})
		}
		if amount < 0 {
			issues = append(issues, Issue{Field: "miscellaneousPrices." + label, Message: "must be 0 or more"})
		}
	}
	if issues != nil {
		return issues
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.draft.item(productID)
	if it == nil {
		return missingItem(productID)
	}
	costs := make(map[string]float64, len(prices))
	for k, v := range prices {
		costs[k] = v
	}
	it.MiscellaneousPrices = costs
	return nil
}

// RemoveMiscellaneousCosts clears the cost map of the line item.
func (s *Store) RemoveMiscellaneousCosts(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.draft.item(productID); it != nil {
		it.MiscellaneousPrices = nil
	}
}

// SetIdentification replaces the draft-wide identification record.
func (s *Store) SetIdentification(id IdentificationDetails) []Issue {
	if issues := ValidateIdentification(id); issues != nil {
		return issues
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := id
	s.draft.Identification = &rec
	return nil
}

// SetNextOfKin replaces the draft-wide next-of-kin record.
func (s *Store) SetNextOfKin(n NextOfKinDetails) []Issue {
	if issues := ValidateNextOfKin(n); issues != nil {
		return issues
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := n
	s.draft.NextOfKin = &rec
	return nil
}

// ClearNextOfKin drops the next-of-kin record.
func (s *Store) ClearNextOfKin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.NextOfKin = nil
}

// LineItem returns a copy of the line item for the product, if present.
func (s *Store) LineItem(productID int64) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.draft.item(productID)
	if it == nil {
		return LineItem{}, false
	}
	return copyLineItem(*it), true
}

// Snapshot returns a deep copy of the whole draft for reading or assembly.
func (s *Store) Snapshot() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Draft{Category: s.draft.Category}
	out.Customers = append([]CustomerRef(nil), s.draft.Customers...)
	out.Items = make([]LineItem, 0, len(s.draft.Items))
	for _, it := range s.draft.Items {
		out.Items = append(out.Items, copyLineItem(it))
	}
	if s.draft.Identification != nil {
		id := *s.draft.Identification
		out.Identification = &id
	}
	if s.draft.NextOfKin != nil {
		nok := *s.draft.NextOfKin
		out.NextOfKin = &nok
	}
	return out
}

// Reset clears the draft back to empty. Used after submit success and on
// explicit cancel.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = Draft{}
}

func missingItem(int64) []Issue {
	return []Issue{{Field: "productId", Message: "no line item for product"}}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
