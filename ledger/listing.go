package ledger

import "fmt"

// ListingType classifies how a player was put on the market. The string
// values are the wire/CSV representation.
type ListingType string

const (
	Regular     ListingType = "Regular"
	RegularLoan ListingType = "Regular Loan"
	FreeLoan    ListingType = "Free Loan"
	DevLoan     ListingType = "Dev Loan"
	PaidLoan    ListingType = "Paid Loan"
)

var listingTypes = map[ListingType]bool{
	Regular:     true,
	RegularLoan: true,
	FreeLoan:    true,
	DevLoan:     true,
	PaidLoan:    true,
}

// Valid reports whether t is one of the recognized listing types.
func (t ListingType) Valid() bool { return listingTypes[t] }

// HasFee reports whether a bid of this type carries a transfer fee for the
// selling club. Loan variants without a fee only move wage room.
func (t ListingType) HasFee() bool { return t == Regular || t == RegularLoan }

func (t ListingType) String() string { return string(t) }

// ParseListingType converts a string to a ListingType, rejecting anything
// outside the recognized set.
func ParseListingType(s string) (ListingType, error) {
	t := ListingType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unrecognized listing type %q", s)
	}
	return t, nil
}
