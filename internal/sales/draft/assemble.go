package draft

import "strconv"

// ValidationError is a structural or cross-field failure found at submission
// time. Path mirrors the dashboard convention of attaching installment escort
// failures to ["nextOfKinDetails","guarantorDetails"] as one combined error.
type ValidationError struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Issues  []Issue  `json:"issues,omitempty"`
}

// SaleItem is one flattened line item inside the outbound payload.
type SaleItem struct {
	ProductID                int64              `json:"productId"`
	Quantity                 int                `json:"quantity"`
	PaymentMode              PaymentMode        `json:"paymentMode"`
	Discount                 float64            `json:"discount"`
	InstallmentDuration      int                `json:"installmentDuration,omitempty"`
	InstallmentStartingPrice float64            `json:"installmentStartingPrice,omitempty"`
	Devices                  []string           `json:"devices"`
	MiscellaneousPrices      map[string]float64 `json:"miscellaneousPrices,omitempty"`
}

// SalePayload is the flattened structure sent to POST /v1/sale/create.
type SalePayload struct {
	Category              Category               `json:"category"`
	CustomerID            int64                  `json:"customerId"`
	SaleItems             []SaleItem             `json:"saleItems"`
	NextOfKinDetails      *NextOfKinDetails      `json:"nextOfKinDetails,omitempty"`
	IdentificationDetails *IdentificationDetails `json:"identificationDetails,omitempty"`
	GuarantorDetails      *GuarantorDetails      `json:"guarantorDetails,omitempty"`
}

// BuildPayload cross-validates a draft snapshot and produces the outbound
// payload. It is pure: no network, no store mutation. All failures come back
// as structured errors, never as panics.
func BuildPayload(d Draft) (*SalePayload, []ValidationError) {
	var errs []ValidationError

	if d.Category == "" {
		errs = append(errs, ValidationError{Path: []string{"category"}, Message: "sale category is required"})
	}
	if len(d.Customers) == 0 {
		errs = append(errs, ValidationError{Path: []string{"customers"}, Message: "at least one customer must be selected"})
	}
	if len(d.Items) == 0 {
		errs = append(errs, ValidationError{Path: []string{"saleItems"}, Message: "at least one line item is required"})
		return nil, errs
	}

	installment := false
	for _, it := range d.Items {
		if it.Params == nil {
			errs = append(errs, itemError(it.ProductID, "payment parameters not set"))
			continue
		}
		if issues := ValidateParameters(*it.Params); issues != nil {
			errs = append(errs, itemIssues(it.ProductID, issues))
		}
		if len(it.Devices) == 0 {
			errs = append(errs, itemError(it.ProductID, "at least one device must be linked"))
		}
		if it.Params.PaymentMode == PaymentModeInstallment {
			installment = true
		}
	}

	if installment && !escortDataComplete(d) {
		errs = append(errs, ValidationError{
			Path:    []string{"nextOfKinDetails", "guarantorDetails"},
			Message: "installment sales require next of kin and guarantor details",
		})
	}

	if errs != nil {
		return nil, errs
	}

	payload := &SalePayload{
		Category:              d.Category,
		CustomerID:            d.Customers[0].ID,
		SaleItems:             make([]SaleItem, 0, len(d.Items)),
		NextOfKinDetails:      d.NextOfKin,
		IdentificationDetails: d.Identification,
	}
	for _, it := range d.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		item := SaleItem{
			ProductID:           it.ProductID,
			Quantity:            qty,
			PaymentMode:         it.Params.PaymentMode,
			Devices:             append([]string(nil), it.Devices...),
			MiscellaneousPrices: it.MiscellaneousPrices,
		}
		if it.Params.Discount != nil {
			item.Discount = *it.Params.Discount
		}
		if it.Params.PaymentMode == PaymentModeInstallment {
			item.InstallmentDuration = it.Params.InstallmentDuration
			item.InstallmentStartingPrice = it.Params.InstallmentStartingPrice
			if payload.GuarantorDetails == nil {
				g := *it.Guarantor
				payload.GuarantorDetails = &g
			}
		}
		payload.SaleItems = append(payload.SaleItems, item)
	}
	return payload, nil
}

// escortDataComplete reports whether every installment line item carries a
// valid guarantor and the draft carries a valid next of kin.
func escortDataComplete(d Draft) bool {
	if d.NextOfKin == nil || ValidateNextOfKin(*d.NextOfKin) != nil {
		return false
	}
	for _, it := range d.Items {
		if it.Params == nil || it.Params.PaymentMode != PaymentModeInstallment {
			continue
		}
		if it.Guarantor == nil || ValidateGuarantor(*it.Guarantor) != nil {
			return false
		}
	}
	return true
}

func itemError(productID int64, msg string) ValidationError {
	return ValidationError{Path: []string{"saleItems", itemKey(productID)}, Message: msg}
}

func itemIssues(productID int64, issues []Issue) ValidationError {
	return ValidationError{
		Path:    []string{"saleItems", itemKey(productID)},
		Message: "invalid payment parameters",
		Issues:  issues,
	}
}

func itemKey(productID int64) string {
	return "product:" + strconv.FormatInt(productID, 10)
}
