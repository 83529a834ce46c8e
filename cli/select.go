package cli

import (
	"errors"
	"slices"
	"strings"

	"facette.io/natsort"
	"github.com/manifoldco/promptui"
)

// ErrNoChoices is returned by Select when there is nothing to choose from.
var ErrNoChoices = errors.New("no choices")

// Select asks the user to pick one of choices. Choices are de-duplicated and
// shown in natural order ("level2" before "level10"); typing filters by prefix.
func Select(label string, choices ...string) (string, error) {
	names := sortedChoices(choices)
	if len(names) == 0 {
		return "", ErrNoChoices
	}

	sel := &promptui.Select{
		Label:    label,
		Items:    names,
		Searcher: prefixSearcher(names),
	}

	_, value, err := sel.Run()
	if err != nil {
		return "", err
	}

	return value, nil
}

func sortedChoices(choices []string) []string {
	names := slices.Clone(choices)
	natsort.Sort(names)

	return slices.Compact(names)
}

func prefixSearcher(names []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if len(input) == 0 {
			return false
		}

		return strings.HasPrefix(strings.ToLower(names[index]), strings.ToLower(input))
	}
}
