package models

import "regexp"

// beninContactPattern matches a local Benin (+229) subscriber number:
// eight digits starting with 4-7.
var beninContactPattern = regexp.MustCompile(`^[4-7][0-9]{7}$`)

// RegistrationRequest is the public registration form payload
type RegistrationRequest struct {
	Nom              string   `json:"nom"`
	Prenom           string   `json:"prenom"`
	CountryCode      string   `json:"countryCode"`
	Contact          string   `json:"contact"`
	ModulesSouhaites []string `json:"modulesSouhaites"`
	Message          string   `json:"message"`
}

// FullContact returns the dialable contact with its country prefix
func (r *RegistrationRequest) FullContact() string {
	return r.CountryCode + r.Contact
}

// IsValidBeninContact reports whether a local contact number is a
// plausible Benin subscriber number. Only +229 numbers get a format
// check; other country codes are accepted as-is.
func IsValidBeninContact(contact string) bool {
	return beninContactPattern.MatchString(contact)
}

// RegistrationLinkResponse is returned to the caller on successful
// registration: the composed deep link the client should open.
type RegistrationLinkResponse struct {
	Link string `json:"link"`
}
