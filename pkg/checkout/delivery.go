package checkout

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Delivery int

const (
	CourierDelivery Delivery = iota
	LocalCollection
)

func (d Delivery) String() string {
	if d == LocalCollection {
		return "local_collection"
	}
	return "courier_delivery"
}

// Classify picks local collection when the city field leads with the pickup
// town as a whole word, ignoring case and surrounding whitespace. "Davangere"
// and "Davangere Town, Karnataka" are local; "North Davangere Road" is not.
func Classify(city, localTown string) Delivery {
	town := strings.ToLower(strings.TrimSpace(localTown))
	if town == "" {
		return CourierDelivery
	}
	rest, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(city)), town)
	if !ok {
		return CourierDelivery
	}
	if next, _ := utf8.DecodeRuneInString(rest); rest != "" && (unicode.IsLetter(next) || unicode.IsDigit(next)) {
		return CourierDelivery
	}
	return LocalCollection
}
