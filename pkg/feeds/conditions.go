package feeds

import (
	"strconv"
	"strings"
)

// Conditionals gate whether a feed runs for a submission.
type Conditionals struct {
	Conditions []Condition `json:"conditions"`
	Status     bool        `json:"status"`
	// Type is "all" or "any".
	Type string `json:"type"`
}

// Condition compares one submitted field against a value.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// DefaultConditionals is the disabled, match-all configuration of a new feed.
func DefaultConditionals() Conditionals {
	return Conditionals{Conditions: []Condition{}, Status: false, Type: "all"}
}

// Matches reports whether the submission satisfies the conditionals.
// Disabled or empty conditionals always match.
func (c Conditionals) Matches(formData map[string]interface{}) bool {
	if !c.Status {
		return true
	}

	var active []Condition
	for _, cond := range c.Conditions {
		if cond.Field != "" {
			active = append(active, cond)
		}
	}
	if len(active) == 0 {
		return true
	}

	if c.Type == "any" {
		for _, cond := range active {
			if cond.Evaluate(formData) {
				return true
			}
		}
		return false
	}

	for _, cond := range active {
		if !cond.Evaluate(formData) {
			return false
		}
	}
	return true
}

// Evaluate applies the condition's operator to the submitted value.
func (c Condition) Evaluate(formData map[string]interface{}) bool {
	raw, _ := Lookup(formData, c.Field)
	actual := Stringify(raw)

	switch c.Operator {
	case "=", "==":
		if items, ok := raw.([]interface{}); ok {
			return containsItem(items, c.Value)
		}
		return actual == c.Value
	case "!=":
		if items, ok := raw.([]interface{}); ok {
			return !containsItem(items, c.Value)
		}
		return actual != c.Value
	case ">", "<", ">=", "<=":
		return compareNumbers(actual, c.Value, c.Operator)
	case "contains":
		return strings.Contains(actual, c.Value)
	case "doNotContains":
		return !strings.Contains(actual, c.Value)
	case "startsWith":
		return strings.HasPrefix(actual, c.Value)
	case "endsWith":
		return strings.HasSuffix(actual, c.Value)
	default:
		return false
	}
}

func containsItem(items []interface{}, value string) bool {
	for _, item := range items {
		if Stringify(item) == value {
			return true
		}
	}
	return false
}

func compareNumbers(actual, expected, op string) bool {
	a, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return false
	}
	switch op {
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	default:
		return a <= b
	}
}
