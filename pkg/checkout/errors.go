package checkout

import "fmt"

type Code int

const (
	CodeEmptyCart Code = iota
	CodeMissingInformation
	CodeIncompletePhone
	CodeUnknownCountry
	CodeInvalidTransition
)

// Notices shown to the customer when the wizard rejects an action.
const (
	MsgEmptyCart          = "Your cart is empty. Add a product before checking out."
	MsgMissingInformation = "Please fill in all required delivery details to place your order."
	MsgIncompletePhone    = "Please enter a complete phone number for the selected country."
	MsgUnknownCountry     = "Delivery is not available for the selected country."
)

func (c Code) String() string {
	switch c {
	case CodeEmptyCart:
		return "EMPTY_CART"
	case CodeMissingInformation:
		return "MISSING_INFORMATION"
	case CodeIncompletePhone:
		return "INCOMPLETE_PHONE"
	case CodeUnknownCountry:
		return "UNKNOWN_COUNTRY"
	case CodeInvalidTransition:
		return "INVALID_TRANSITION"
	default:
		return "UNKNOWN"
	}
}

// Rejection is returned when a wizard action is refused. The wizard stays in
// the state it was in.
type Rejection struct {
	Code    Code
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(code Code, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}

func invalidTransition(from Step, action string) *Rejection {
	return &Rejection{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s from the %s step", action, from),
	}
}
