package domain

import "time"

// ClientKind discriminates the two client variants
type ClientKind string

const (
	ClientKindPerson  ClientKind = "person"
	ClientKindCompany ClientKind = "company"
)

// Client is a registered client, either a person or a company.
// Exactly one of Person / Company is set, according to Kind.
type Client struct {
	ID           int64           `json:"id"`
	Kind         ClientKind      `json:"kind"`
	Address      string          `json:"address"`
	Email        string          `json:"email"`
	PhoneNumber  string          `json:"phone_number"`
	DeletionDate *time.Time      `json:"deletion_date,omitempty"`
	Person       *PersonDetails  `json:"person,omitempty"`
	Company      *CompanyDetails `json:"company,omitempty"`
}

// PersonDetails holds the person-specific fields
type PersonDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Pesel     string `json:"pesel"`
}

// CompanyDetails holds the company-specific fields
type CompanyDetails struct {
	CompanyName string `json:"company_name"`
	KRS         string `json:"krs"`
}

// IsDeleted reports whether the client has been soft-deleted
func (c Client) IsDeleted() bool {
	return c.DeletionDate != nil
}

// peselWeights are applied to the first 10 digits of a PESEL number
var peselWeights = [10]int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3}

// IsDigits reports whether s is non-empty and consists of ASCII digits only
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PeselChecksumOK verifies the PESEL control digit. The caller must have
// checked the length (11) and that the string is numeric.
func PeselChecksumOK(pesel string) bool {
	sum := 0
	for i, w := range peselWeights {
		sum += int(pesel[i]-'0') * w
	}

	control := (10 - (sum % 10)) % 10
	return control == int(pesel[10]-'0')
}
