package draft

// Category selects which stock pool a sale draws from.
type Category string

const (
	CategoryInventory Category = "INVENTORY"
	CategoryProduct   Category = "PRODUCT"
)

// PaymentMode describes how a line item is paid for.
type PaymentMode string

const (
	PaymentModeOneOff      PaymentMode = "ONE_OFF"
	PaymentModeInstallment PaymentMode = "INSTALLMENT"
)

// CustomerRef is an opaque reference to an already validated customer
// supplied by the customer selection flow.
type CustomerRef struct {
	ID    int64  `json:"id" validate:"required,gt=0"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Parameters holds payment terms for one line item.
type Parameters struct {
	PaymentMode              PaymentMode `json:"paymentMode" validate:"required,oneof=ONE_OFF INSTALLMENT"`
	Discount                 *float64    `json:"discount,omitempty" validate:"omitempty,gte=0"`
	InstallmentDuration      int         `json:"installmentDuration,omitempty" validate:"required_if=PaymentMode INSTALLMENT,omitempty,gt=0"`
	InstallmentStartingPrice float64     `json:"installmentStartingPrice,omitempty" validate:"required_if=PaymentMode INSTALLMENT,omitempty,gt=0"`
}

// IdentificationDetails records one government issued ID. It is used both as
// the draft-wide identification record and embedded in GuarantorDetails.
type IdentificationDetails struct {
	IDType         string `json:"idType" validate:"required,min=2"`
	IDNumber       string `json:"idNumber" validate:"required,min=5"`
	IssuingCountry string `json:"issuingCountry" validate:"required,min=2"`
	IssueDate      string `json:"issueDate,omitempty" validate:"omitempty,dateparse"`
	ExpirationDate string `json:"expirationDate,omitempty" validate:"omitempty,dateparse"`
	FullNameAsOnID string `json:"fullNameAsOnID" validate:"required,min=3"`
	AddressAsOnID  string `json:"addressAsOnID,omitempty"`
}

// GuarantorDetails records the person vouching for an installment line item.
type GuarantorDetails struct {
	FullName       string                `json:"fullName" validate:"required,min=3"`
	PhoneNumber    string                `json:"phoneNumber" validate:"required,min=10"`
	Email          string                `json:"email" validate:"required,email"`
	HomeAddress    string                `json:"homeAddress" validate:"required,min=5"`
	DateOfBirth    string                `json:"dateOfBirth" validate:"required,dateparse"`
	Nationality    string                `json:"nationality,omitempty"`
	Identification IdentificationDetails `json:"identificationDetails"`
}

// NextOfKinDetails is shared across the whole draft, not per line item.
type NextOfKinDetails struct {
	FullName     string `json:"fullName" validate:"required,min=3"`
	Relationship string `json:"relationship" validate:"required,min=2"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,min=10"`
	Email        string `json:"email" validate:"required,email"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required,dateparse"`
	HomeAddress  string `json:"homeAddress,omitempty"`
	Nationality  string `json:"nationality,omitempty"`
}

// LineItem is one product-and-terms combination inside a draft.
// Guarantor lives on the line item: installment terms are per line item, so
// the person guaranteeing them is too.
type LineItem struct {
	ProductID           int64              `json:"productId"`
	Quantity            int                `json:"quantity"`
	Params              *Parameters        `json:"parameters,omitempty"`
	Guarantor           *GuarantorDetails  `json:"guarantorDetails,omitempty"`
	Devices             []string           `json:"devices"`
	MiscellaneousPrices map[string]float64 `json:"miscellaneousPrices,omitempty"`
}

// Draft is an immutable snapshot of a sale being assembled. Store hands out
// deep copies so readers never alias the mutable aggregate.
type Draft struct {
	Category       Category               `json:"category"`
	Customers      []CustomerRef          `json:"customers"`
	Items          []LineItem             `json:"lineItems"`
	Identification *IdentificationDetails `json:"identificationDetails,omitempty"`
	NextOfKin      *NextOfKinDetails      `json:"nextOfKinDetails,omitempty"`
}

func (d Draft) item(productID int64) *LineItem {
	for i := range d.Items {
		if d.Items[i].ProductID == productID {
			return &d.Items[i]
		}
	}
	return nil
}

func copyLineItem(it LineItem) LineItem {
	out := it
	if it.Params != nil {
		p := *it.Params
		out.Params = &p
	}
	if it.Guarantor != nil {
		g := *it.Guarantor
		out.Guarantor = &g
	}
	out.Devices = append([]string(nil), it.Devices...)
	if it.MiscellaneousPrices != nil {
		out.MiscellaneousPrices = make(map[string]float64, len(it.MiscellaneousPrices))
		for k, v := range it.MiscellaneousPrices {
			out.MiscellaneousPrices[k] = v
		}
	}
	return out
}
