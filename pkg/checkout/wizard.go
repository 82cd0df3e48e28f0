// Package checkout implements the three-step confirmation flow between an open
// cart and a submitted order.
//
// The wizard starts at StepCart. ReviewOrder moves to StepSummary when the cart
// has lines, EnterDetails and Back move between StepSummary and StepDetails,
// and Submit validates the customer details. Reset returns to StepCart from
// anywhere. Every refused action returns a *Rejection and leaves the wizard
// where it was.
package checkout

import (
	"strings"

	"github.com/example/storefront/pkg/cart"
)

type Step int

const (
	StepCart Step = iota
	StepSummary
	StepDetails
)

func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepSummary:
		return "summary"
	case StepDetails:
		return "details"
	default:
		return "unknown"
	}
}

// CustomerDetails is held only for the lifetime of a checkout session.
// Phone holds national digits only; the dialing code lives in CountryCode.
type CustomerDetails struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Landmark    string `json:"landmark,omitempty"`
	City        string `json:"city"`
	Pincode     string `json:"pincode,omitempty"`
}

func defaultDetails() CustomerDetails {
	return CustomerDetails{CountryCode: DefaultCountryCode}
}

// FullPhone renders the number as "+91 9876543210".
func (d CustomerDetails) FullPhone() string {
	if d.Phone == "" {
		return ""
	}
	return d.CountryCode + " " + d.Phone
}

// Submission is what a successful Submit hands to the caller: the cart lines,
// trimmed customer details and the delivery classification.
type Submission struct {
	Lines    []cart.Line
	Customer CustomerDetails
	Delivery Delivery
}

type Wizard struct {
	step      Step
	details   CustomerDetails
	localTown string
}

// New returns a wizard at StepCart. localTown is the town whose customers
// collect their order in person.
func New(localTown string) *Wizard {
	return &Wizard{
		step:      StepCart,
		details:   defaultDetails(),
		localTown: localTown,
	}
}

func (w *Wizard) Step() Step {
	return w.step
}

func (w *Wizard) Details() CustomerDetails {
	return w.details
}

// ReviewOrder moves from the cart to the order summary.
func (w *Wizard) ReviewOrder(c *cart.Cart) error {
	if w.step != StepCart {
		return invalidTransition(w.step, "review the order")
	}
	if c.IsEmpty() {
		return reject(CodeEmptyCart, MsgEmptyCart)
	}
	w.step = StepSummary
	return nil
}

// EnterDetails moves from the summary to the customer details form.
func (w *Wizard) EnterDetails() error {
	if w.step != StepSummary {
		return invalidTransition(w.step, "enter details")
	}
	w.step = StepDetails
	return nil
}

// Back moves from the details form to the summary.
func (w *Wizard) Back() error {
	if w.step != StepDetails {
		return invalidTransition(w.step, "go back")
	}
	w.step = StepSummary
	return nil
}

// Reset clears the customer details and returns to the cart step.
func (w *Wizard) Reset() {
	w.step = StepCart
	w.details = defaultDetails()
}

// SetCountry switches the dialing code and truncates any phone number already
// entered to the new country's digit count.
func (w *Wizard) SetCountry(code string) error {
	rule, ok := LookupCountry(code)
	if !ok {
		return reject(CodeUnknownCountry, MsgUnknownCountry)
	}
	w.details.CountryCode = rule.Code
	if len(w.details.Phone) > rule.Digits {
		w.details.Phone = w.details.Phone[:rule.Digits]
	}
	return nil
}

// SetPhone keeps only digits, capped at the selected country's digit count.
func (w *Wizard) SetPhone(raw string) {
	w.details.Phone = SanitizePhone(raw, digitLimit(w.details.CountryCode))
}

func (w *Wizard) SetName(v string)     { w.details.Name = v }
func (w *Wizard) SetAddress(v string)  { w.details.Address = v }
func (w *Wizard) SetLandmark(v string) { w.details.Landmark = v }
func (w *Wizard) SetCity(v string)     { w.details.City = v }
func (w *Wizard) SetPincode(v string)  { w.details.Pincode = v }

// Submit validates the details step. The wizard is left in StepDetails; the
// caller resets it once the order has been handed off.
func (w *Wizard) Submit(c *cart.Cart) (*Submission, error) {
	if w.step != StepDetails {
		return nil, invalidTransition(w.step, "submit")
	}
	if c.IsEmpty() {
		return nil, reject(CodeEmptyCart, MsgEmptyCart)
	}

	d := CustomerDetails{
		Name:        strings.TrimSpace(w.details.Name),
		CountryCode: w.details.CountryCode,
		Phone:       w.details.Phone,
		Address:     strings.TrimSpace(w.details.Address),
		Landmark:    strings.TrimSpace(w.details.Landmark),
		City:        strings.TrimSpace(w.details.City),
		Pincode:     strings.TrimSpace(w.details.Pincode),
	}
	if d.Name == "" || d.Phone == "" || d.Address == "" || d.City == "" {
		return nil, reject(CodeMissingInformation, MsgMissingInformation)
	}
	if len(d.Phone) != digitLimit(d.CountryCode) {
		return nil, reject(CodeIncompletePhone, MsgIncompletePhone)
	}

	return &Submission{
		Lines:    c.Lines(),
		Customer: d,
		Delivery: Classify(d.City, w.localTown),
	}, nil
}
