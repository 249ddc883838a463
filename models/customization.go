package models

import (
	"fmt"
	"strings"
)

type CustomizationKind string

const (
	CustomizationStandard  CustomizationKind = "standard"
	CustomizationCustomHat CustomizationKind = "custom_hat"
)

// Customization is one of StandardCustomization or CustomHatCustomization.
type Customization interface {
	Kind() CustomizationKind
}

type StandardCustomization struct {
	Font  string `json:"font"`
	Style string `json:"style"`
}

func (StandardCustomization) Kind() CustomizationKind { return CustomizationStandard }

type CustomHatCustomization struct {
	Font       string `json:"font"`
	Color      string `json:"color"`
	CustomText string `json:"customText"`
}

func (CustomHatCustomization) Kind() CustomizationKind { return CustomizationCustomHat }

// IsCustomHat reports whether c is the custom-hat variant.
func IsCustomHat(c Customization) bool {
	_, ok := c.(CustomHatCustomization)
	return ok
}

// SameCustomization compares the variant tag first and then every field of that variant.
// A nil customization is treated as an empty standard one.
func SameCustomization(a, b Customization) bool {
	a, b = normalizeCustomization(a), normalizeCustomization(b)
	switch x := a.(type) {
	case StandardCustomization:
		y, ok := b.(StandardCustomization)
		return ok && x == y
	case CustomHatCustomization:
		y, ok := b.(CustomHatCustomization)
		return ok && x == y
	default:
		return false
	}
}

// DescribeCustomization renders a customization for receipts and emails.
func DescribeCustomization(c Customization) string {
	switch x := normalizeCustomization(c).(type) {
	case StandardCustomization:
		var parts []string
		if x.Font != "" {
			parts = append(parts, "Font: "+x.Font)
		}
		if x.Style != "" {
			parts = append(parts, "Style: "+x.Style)
		}
		return strings.Join(parts, ", ")
	case CustomHatCustomization:
		return fmt.Sprintf("Custom text %q, Color: %s, Font: %s", x.CustomText, x.Color, x.Font)
	default:
		return ""
	}
}

func normalizeCustomization(c Customization) Customization {
	switch x := c.(type) {
	case nil:
		return StandardCustomization{}
	case *StandardCustomization:
		if x == nil {
			return StandardCustomization{}
		}
		return *x
	case *CustomHatCustomization:
		if x == nil {
			return StandardCustomization{}
		}
		return *x
	default:
		return c
	}
}

// NormalizeCustomization returns the value form of c, mapping nil to an empty standard customization.
func NormalizeCustomization(c Customization) Customization {
	return normalizeCustomization(c)
}

// CustomizationPayload is the wire shape of a customization. The isCustomHat flag selects the variant.
type CustomizationPayload struct {
	IsCustomHat bool   `json:"isCustomHat,omitempty"`
	Font        string `json:"font"`
	Style       string `json:"style,omitempty"`
	Color       string `json:"color,omitempty"`
	CustomText  string `json:"customText,omitempty"`
}

func (p CustomizationPayload) Customization() Customization {
	if p.IsCustomHat {
		return CustomHatCustomization{Font: p.Font, Color: p.Color, CustomText: p.CustomText}
	}
	return StandardCustomization{Font: p.Font, Style: p.Style}
}

func NewCustomizationPayload(c Customization) CustomizationPayload {
	switch x := normalizeCustomization(c).(type) {
	case CustomHatCustomization:
		return CustomizationPayload{IsCustomHat: true, Font: x.Font, Color: x.Color, CustomText: x.CustomText}
	case StandardCustomization:
		return CustomizationPayload{Font: x.Font, Style: x.Style}
	default:
		return CustomizationPayload{}
	}
}
