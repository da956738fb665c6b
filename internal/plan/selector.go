package plan

import (
	"strconv"
	"strings"

	"github.com/saadjs/keto-cli/internal/apperr"
)

const (
	CustomSentinel = "custom"
	UnsetSentinel  = "unset"
)

type SelectorKind int

const (
	SelectUnset SelectorKind = iota
	SelectCustom
	SelectRecipe
)

// Selector is what the user picked for a slot.
type Selector struct {
	Kind     SelectorKind
	RecipeID int64
}

func Unset() Selector { return Selector{Kind: SelectUnset} }

func Custom() Selector { return Selector{Kind: SelectCustom} }

func Recipe(id int64) Selector { return Selector{Kind: SelectRecipe, RecipeID: id} }

func (s Selector) IsRecipe() bool { return s.Kind == SelectRecipe }

// String renders the selector in the form accepted by ParseSelector.
func (s Selector) String() string {
	switch s.Kind {
	case SelectCustom:
		return CustomSentinel
	case SelectRecipe:
		return strconv.FormatInt(s.RecipeID, 10)
	default:
		return UnsetSentinel
	}
}

// ParseSelector accepts "custom", "unset", "", "0" or a positive recipe id.
func ParseSelector(raw string) (Selector, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", UnsetSentinel, "0":
		return Unset(), nil
	case CustomSentinel:
		return Custom(), nil
	}
	if !canonicalID(v) {
		return Selector{}, apperr.InvalidSelectorf("selector %q is not custom, unset or a recipe id", raw)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return Selector{}, apperr.InvalidSelectorf("selector %q is not custom, unset or a recipe id", raw)
	}
	return Recipe(id), nil
}

// canonicalID reports plain decimal digits without a sign or leading zero,
// so a recipe selector prints back exactly as it was given.
func canonicalID(v string) bool {
	if v == "" || v[0] == '0' {
		return false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s Selector) validate() error {
	switch s.Kind {
	case SelectUnset, SelectCustom:
		return nil
	case SelectRecipe:
		if s.RecipeID <= 0 {
			return apperr.InvalidSelectorf("recipe id must be > 0, got %d", s.RecipeID)
		}
		return nil
	default:
		return apperr.InvalidSelectorf("unknown selector kind %d", s.Kind)
	}
}
