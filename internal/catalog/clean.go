package catalog

import (
	"strings"
	"unicode"

	"github.com/actuallystonmai/course-recommender/internal/domain"
)

// stopwords is the fixed English stopword set removed from titles.
var stopwords = toSet(`a about above across after afterwards again against all almost alone along
already also although always am among amongst an and another any anyhow anyone anything anyway
anywhere are around as at be became because become becomes becoming been before beforehand behind
being below beside besides between beyond both but by can cannot could did do does doing done down
due during each either else elsewhere enough etc even ever every everyone everything everywhere
except few for former formerly from further had has have having he hence her here hereafter hereby
herein hereupon hers herself him himself his how however i if in indeed into is it its itself just
keep last latter latterly least less made make many may me meanwhile might mine more moreover most
mostly much must my myself namely neither never nevertheless next no nobody none noone nor not
nothing now nowhere of off often on once one only onto or other others otherwise our ours ourselves
out over own part per perhaps please put rather re s same see seem seemed seeming seems several she
should since so some somehow someone something sometime sometimes somewhere still such t than that
the their theirs them themselves then thence there thereafter thereby therefore therein thereupon
these they this those though through throughout thru thus to together too toward towards under
until up upon us very via was we well were what whatever when whence whenever where whereafter
whereas whereby wherein whereupon wherever whether which while whither who whoever whole whom whose
why will with within without would yet you your yours yourself yourselves`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether w (lowercase) is in the stopword set.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// CleanTitle lowercases the title, replaces every non-alphanumeric rune with
// a space and drops stopwords. Applying it to its own output is a no-op.
func CleanTitle(title string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)

	words := strings.Fields(mapped)
	kept := words[:0]
	for _, w := range words {
		if IsStopword(w) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// CleanTitles returns a copy of courses with CleanTitle derived from Title.
func CleanTitles(courses []domain.Course) []domain.Course {
	out := make([]domain.Course, len(courses))
	for i, c := range courses {
		c.CleanTitle = CleanTitle(c.Title)
		out[i] = c
	}
	return out
}
