// Package taxonomy defines the fixed administrative categories and urgency
// levels shared by classification, hard rules, and routing rules.
package taxonomy

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidUrgency  = errors.New("invalid urgency")
)

// Any is the wildcard accepted by routing rule conditions.
const Any = "any"

// Category is one of the fixed administrative categories.
type Category string

const (
	DisasterManagement    Category = "Disaster Management"
	Finance               Category = "Finance"
	Health                Category = "Health"
	Infrastructure        Category = "Infrastructure"
	Education             Category = "Education"
	Agriculture           Category = "Agriculture"
	LawAndOrder           Category = "Law and Order"
	GeneralAdministration Category = "General Administration"
)

var categories = []Category{
	DisasterManagement,
	Finance,
	Health,
	Infrastructure,
	Education,
	Agriculture,
	LawAndOrder,
	GeneralAdministration,
}

// Categories returns the category values in their canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s case-insensitively, ignoring surrounding and repeated
// whitespace, and returns the canonical category.
func ParseCategory(s string) (Category, error) {
	key := fold(s)
	for _, c := range categories {
		if fold(string(c)) == key {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// UnmarshalJSON accepts any casing of a known category.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Urgency is a document's urgency level.
type Urgency string

const (
	Low    Urgency = "Low"
	Medium Urgency = "Medium"
	High   Urgency = "High"
)

var urgencies = []Urgency{Low, Medium, High}

// Urgencies returns the urgency values from lowest to highest.
func Urgencies() []Urgency {
	out := make([]Urgency, len(urgencies))
	copy(out, urgencies)
	return out
}

// ParseUrgency matches s case-insensitively and returns the canonical urgency.
func ParseUrgency(s string) (Urgency, error) {
	key := fold(s)
	for _, u := range urgencies {
		if fold(string(u)) == key {
			return u, nil
		}
	}
	return "", ErrInvalidUrgency
}

// UnmarshalJSON accepts any casing of a known urgency.
func (u *Urgency) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseUrgency(raw)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// ParseCondition normalizes a routing rule condition value. An empty value or
// any casing of "any" yields Any; otherwise parse must accept the value.
func ParseCondition[T ~string](s string, parse func(string) (T, error)) (string, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), Any) {
		return Any, nil
	}
	v, err := parse(s)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// MatchCondition reports whether a condition value accepts v. Any accepts everything.
func MatchCondition(condition, v string) bool {
	return condition == Any || strings.EqualFold(condition, v)
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
