package deser

import (
	"fmt"
	"strconv"

	"github.com/sahilm/fuzzy"

	"github.com/reoring/kdlt/shape"
)

// didYouMean suggests the closest candidate to a mistyped name; empty
// when nothing is close.
func didYouMean(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", matches[0].Str)
}

// fieldNames lists the declared field names, position markers standing
// in for unnamed ones.
func fieldNames(decl []shape.Field) []string {
	out := make([]string, len(decl))
	for i, fd := range decl {
		if fd.Name != "" {
			out[i] = fd.Name
		} else {
			out[i] = "." + strconv.Itoa(i)
		}
	}
	return out
}
