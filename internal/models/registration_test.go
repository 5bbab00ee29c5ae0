package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBeninContact(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		want    bool
	}{
		{name: "valid starting with 4", contact: "41234567", want: true},
		{name: "valid starting with 6", contact: "61234567", want: true},
		{name: "valid starting with 7", contact: "71234567", want: true},
		{name: "starts with 3", contact: "31234567", want: false},
		{name: "starts with 9", contact: "91234567", want: false},
		{name: "too short", contact: "6123456", want: false},
		{name: "too long", contact: "612345678", want: false},
		{name: "contains letters", contact: "61a34567", want: false},
		{name: "contains spaces", contact: "61 234 567", want: false},
		{name: "empty", contact: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidBeninContact(tt.contact))
		})
	}
}

func TestRegistrationRequest_FullContact(t *testing.T) {
	r := RegistrationRequest{CountryCode: "+229", Contact: "61234567"}
	assert.Equal(t, "+22961234567", r.FullContact())
}
