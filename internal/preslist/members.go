package preslist

import (
	"slices"
	"sort"
	"strings"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// GroupMemberIDs returns, sorted, the ids of people with an employment or
// education record referencing group.
func GroupMemberIDs(people []docstore.Document, group string) []string {
	var ids []string
	for _, p := range people {
		if memberOf(p, group) {
			ids = append(ids, p.ID())
		}
	}
	sort.Strings(ids)
	return slices.Compact(ids)
}

func memberOf(p docstore.Document, group string) bool {
	for _, section := range []string{"employment", "education"} {
		for _, rec := range p.List(section) {
			if g, ok := rec.String("group"); ok && g == group {
				return true
			}
		}
	}
	return false
}

// positionLevels ranks group positions; unknown positions rank -1.
var positionLevels = map[string]int{
	"":                                 -1,
	"editor":                           -1,
	"unknown":                          -1,
	"undergraduate research assistant": 1,
	"intern":                           1,
	"undergraduate researcher":         1,
	"undergraduate student":            1,
	"visiting student":                 1,
	"masters research assistant":       2,
	"masters student":                  2,
	"graduate student":                 3,
	"graduate research assistant":      3,
	"teaching assistant":               3,
	"research assistant":               3,
	"visiting scholar":                 4,
	"post-doctoral scholar":            4,
	"postdoc":                          4,
	"research fellow":                  4,
	"research scientist":               4,
	"assistant scientist":              4,
	"associate scientist":              5,
	"adjunct scientist":                5,
	"scientist":                        5,
	"lecturer":                         5,
	"senior lecturer":                  6,
	"assistant professor":              7,
	"adjunct professor":                7,
	"associate professor":              8,
	"professor":                        9,
	"distinguished professor":          10,
	"chair":                            11,
	"director":                         11,
	"dean":                             12,
	"president":                        13,
}

// PositionKey ranks a person for listing: position seniority first, then
// surnames earlier in the alphabet. Larger keys sort first.
func PositionKey(p docstore.Document) (level, alpha int) {
	pos, _ := p.String("position")
	level, ok := positionLevels[strings.ToLower(strings.TrimSpace(pos))]
	if !ok {
		level = -1
	}
	name, _ := p.String("name")
	fields := strings.Fields(name)
	if len(fields) == 0 {
		fields = []string{"zappa"}
	}
	last := strings.ToUpper(fields[len(fields)-1])
	if c := last[0]; c >= 'A' && c <= 'Z' {
		alpha = 26 - int(c-'A')
	}
	return level, alpha
}

// SortByPosition orders people by descending PositionKey, keeping input
// order among equals.
func SortByPosition(people []docstore.Document) {
	sort.SliceStable(people, func(i, j int) bool {
		li, ai := PositionKey(people[i])
		lj, aj := PositionKey(people[j])
		if li != lj {
			return li > lj
		}
		return ai > aj
	})
}
