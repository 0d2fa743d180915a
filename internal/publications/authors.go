package publications

import (
	"strings"

	"github.com/matsen/labpage/internal/reference"
)

// FormatAuthors turns a "Last, First and Last, First" author field into the
// display line "First Last, First Last. ".
//
// The list is split on the literal substring "and", not the word, so a name
// such as "Alexander" is cut apart; existing pages rely on this output and it
// is kept as is. The name equal to highlight is wrapped in <u>, positions in
// stars get a trailing "*", and the final name ends with ". ".
func FormatAuthors(authorLine, highlight string, stars map[int]bool) string {
	var b strings.Builder
	segments := strings.Split(authorLine, "and")
	for i, seg := range segments {
		name := reference.ParseName(seg).FullName()
		if name == highlight {
			name = "<u>" + name + "</u>"
		}
		b.WriteString(name)
		if stars[i] {
			b.WriteString("*")
		}
		if i < len(segments)-1 {
			b.WriteString(", ")
		} else {
			b.WriteString(". ")
		}
	}
	return b.String()
}
