package util

import "strings"

// MakeTextList joins terminal names into an Oxford-comma'd list, the way
// runtime.FormatError renders a parse error's expected-terminal set as
// "expected one of {a, b, and c}".
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " and " + items[1]
	} else {
		// if its more than two, use an oxford comma
		items[len(items)-1] = "and " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}
