package registration

import (
	"errors"
	"fmt"
	"strings"
)

// Step names a registration wizard page.
type Step string

// Registration steps in order.
const (
	StepBusiness  Step = "business"
	StepContact   Step = "contact"
	StepDocuments Step = "documents"
	StepAccount   Step = "account"
)

// Steps lists the wizard pages in order.
var Steps = []Step{StepBusiness, StepContact, StepDocuments, StepAccount}

// ErrUnknownStep is returned for a step name or number outside the wizard.
var ErrUnknownStep = errors.New("unknown registration step")

// ParseStep accepts a step name or its 1-based position.
func ParseStep(raw string) (Step, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for i, s := range Steps {
		if raw == string(s) || raw == fmt.Sprint(i+1) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnknownStep)
}

// BusinessInfo is step one.
type BusinessInfo struct {
	CompanyName     string `json:"companyName" validate:"required"`
	GSTNumber       string `json:"gstNumber" validate:"required,gstin"`
	BusinessType    string `json:"businessType" validate:"required,oneof=restaurant catering retail institutional distributor other"`
	BusinessAddress string `json:"businessAddress" validate:"required"`
	Pincode         string `json:"pincode" validate:"required,pincode"`
	City            string `json:"city" validate:"required"`
	State           string `json:"state" validate:"required"`
}

// ContactDetails is step two.
type ContactDetails struct {
	ContactPersonName string `json:"contactPersonName" validate:"required"`
	Designation       string `json:"designation" validate:"required"`
	MobileNumber      string `json:"mobileNumber" validate:"required,in_mobile"`
	Email             string `json:"email" validate:"required,email"`
	AlternateNumber   string `json:"alternateNumber" validate:"required,in_mobile"`
	WhatsappNumber    string `json:"whatsappNumber" validate:"omitempty,in_mobile"`
	OpeningTime       string `json:"openingTime" validate:"omitempty,datetime=15:04"`
	ClosingTime       string `json:"closingTime" validate:"omitempty,datetime=15:04"`
}

// Documents is step three. Each field references an uploaded file.
type Documents struct {
	GSTCertificate  string `json:"gstCertificate" validate:"required"`
	BusinessLicense string `json:"businessLicense" validate:"required"`
	PanCard         string `json:"panCard" validate:"required"`
	AddressProof    string `json:"addressProof" validate:"required"`
}

// AccountSetup is step four.
type AccountSetup struct {
	Password           string `json:"password" validate:"required,strong_password"`
	ConfirmPassword    string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms        bool   `json:"acceptTerms" validate:"required"`
	AcceptMinimumOrder bool   `json:"acceptMinimumOrder" validate:"required"`
	MarketingEmails    bool   `json:"marketingEmails"`
}

// Application is the full registration submitted after the last step.
type Application struct {
	Business  BusinessInfo   `json:"business"`
	Contact   ContactDetails `json:"contact"`
	Documents Documents      `json:"documents"`
	Account   AccountSetup   `json:"account"`
}

func newPayload(step Step) any {
	switch step {
	case StepBusiness:
		return &BusinessInfo{}
	case StepContact:
		return &ContactDetails{}
	case StepDocuments:
		return &Documents{}
	case StepAccount:
		return &AccountSetup{}
	}
	return nil
}
