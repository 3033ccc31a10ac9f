package cleverreach

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        Int    `json:"expires_in"`
	Scope            string `json:"scope"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Group is a CleverReach mailing list.
type Group struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Stamp    Int    `json:"stamp"`
	LastMail Int    `json:"last_mailing"`
	Changed  Int    `json:"last_changed"`
	Locked   bool   `json:"isLocked"`
}

// Attribute is a per-group receiver attribute.
type Attribute struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	GroupID     ID     `json:"group_id"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Tag         string `json:"tag"`
	Preview     string `json:"preview_value"`
}

// Subscriber is the receiver payload posted for a form submission.
type Subscriber struct {
	ListID     string            `json:"list_id"`
	Email      string            `json:"email"`
	Attributes map[string]string `json:"attributes"`
}

// formBody renders the subscriber for a form-encoded POST.
func (s Subscriber) formBody() map[string]interface{} {
	attributes := make(map[string]interface{}, len(s.Attributes))
	for k, v := range s.Attributes {
		attributes[k] = v
	}
	return map[string]interface{}{
		"list_id":    s.ListID,
		"email":      s.Email,
		"attributes": attributes,
	}
}

// ID accepts identifiers sent either as JSON numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unable to parse id: %s", string(data))
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Int accepts integers sent either as JSON numbers or numeric strings.
type Int int64

func (i *Int) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = 0
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := n.Float64()
		if err != nil {
			return err
		}
		*i = Int(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unable to parse integer: %s", string(data))
	}
	if s == "" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unable to parse integer: %s", s)
	}
	*i = Int(v)
	return nil
}
