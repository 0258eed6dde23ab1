package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"minder/internal/model"
)

// An expense line is the whole message: digits, an optional fraction,
// and exactly one category letter. Checked before date extraction so
// "5.50f" is never misread as a date phrase.
var expensePattern = regexp.MustCompile(`^(\d+\.?\d*)([ftsoi])$`)

// Expense matches text against the strict amount+category pattern.
// Anything else, including unknown category letters, is "not an
// expense line".
func Expense(text string) (model.Expense, bool) {
	m := expensePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return model.Expense{}, false
	}

	// The pattern admits a trailing dot ("10.f"); decimal does not.
	amount, err := decimal.NewFromString(strings.TrimSuffix(m[1], "."))
	if err != nil {
		return model.Expense{}, false
	}

	cat := model.Category(m[2][0])
	if !cat.Valid() {
		return model.Expense{}, false
	}

	return model.Expense{Amount: amount, Category: cat}, true
}
