package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Profile is a profile document of the directory collection.
type Profile struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Address  string `json:"address,omitempty"`
	Age      *int   `json:"age,omitempty"`
	IsPublic bool   `json:"isPublic"`
}

// Decode reads a profile from a raw document payload.
func Decode(raw json.RawMessage) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.ID == "" {
		return Profile{}, fmt.Errorf("decode profile: missing $id")
	}
	return p, nil
}

// NewProfile is the document created for a user without a profile.
type NewProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsPublic bool   `json:"isPublic"`
}

// Form is the editable profile as submitted by the user.
// Age is free text; anything that is not an integer is stored as 0.
type Form struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Age      string `json:"age"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	IsPublic bool   `json:"isPublic"`
}

// UnmarshalJSON accepts age as a JSON string or number.
func (f *Form) UnmarshalJSON(data []byte) error {
	type plain Form
	var aux struct {
		plain
		Age json.RawMessage `json:"age"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = Form(aux.plain)
	f.Age = ""
	if len(aux.Age) > 0 && string(aux.Age) != "null" {
		var s string
		if err := json.Unmarshal(aux.Age, &s); err != nil {
			s = string(aux.Age)
		}
		f.Age = s
	}
	return nil
}

// ParseAge converts the form age, falling back to 0.
func (f Form) ParseAge() int {
	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil {
		return 0
	}
	return age
}

// Document returns the fields written to the profile document.
func (f Form) Document() map[string]any {
	return map[string]any{
		"name":     f.Name,
		"email":    f.Email,
		"mobile":   f.Mobile,
		"age":      f.ParseAge(),
		"address":  f.Address,
		"city":     f.City,
		"state":    f.State,
		"pincode":  f.Pincode,
		"isPublic": f.IsPublic,
	}
}

// Recovery is a password recovery request. Email defaults to the user's.
type Recovery struct {
	Email string `json:"email"`
}
