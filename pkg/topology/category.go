package topology

import "strings"

// Category is the structural class of a vertex.
type Category string

// Vertex categories.
const (
	CategoryIGP         Category = "igp_node"
	CategoryBGP         Category = "bgp_node"
	CategoryPrefix      Category = "prefix"
	CategoryWorkload    Category = "workload"
	CategoryPolarflyW   Category = "polarfly_W"
	CategoryPolarflyV1c Category = "polarfly_V1c"
	CategoryPolarflyV1n Category = "polarfly_V1n"
	CategoryPolarflyV2  Category = "polarfly_V2"
	CategoryUnknown     Category = "unknown"
)

// Categories lists every category in priority order. Layouts that place
// several categories on one shape walk them in this order.
var Categories = []Category{
	CategoryIGP,
	CategoryBGP,
	CategoryPrefix,
	CategoryWorkload,
	CategoryPolarflyW,
	CategoryPolarflyV1c,
	CategoryPolarflyV1n,
	CategoryPolarflyV2,
	CategoryUnknown,
}

// Priority returns the position of c in [Categories].
func (c Category) Priority() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories) - 1
}

// IsPolarfly reports whether c is one of the four polarfly classes.
func (c Category) IsPolarfly() bool {
	switch c {
	case CategoryPolarflyW, CategoryPolarflyV1c, CategoryPolarflyV1n, CategoryPolarflyV2:
		return true
	}
	return false
}

// kindKeys are the explicit attributes consulted before the id, in order.
var kindKeys = []string{"collection", "_collection", "kind"}

// classRule maps a substring of a lower-cased collection name to a category.
// Rules are checked in order; the first match wins.
type classRule struct {
	pattern  string
	category Category
}

var classRules = []classRule{
	{"polarfly_v1c", CategoryPolarflyV1c},
	{"polarfly_v1n", CategoryPolarflyV1n},
	{"polarfly_v2", CategoryPolarflyV2},
	{"polarfly_w", CategoryPolarflyW},
	{"prefix", CategoryPrefix},
	{"igp", CategoryIGP},
	{"bgp", CategoryBGP},
	{"workload", CategoryWorkload},
	{"gpu", CategoryWorkload},
	{"host", CategoryWorkload},
}

// Classify derives the category of a vertex.
//
// The first non-empty string among the collection, _collection and kind
// attributes is matched against the rule table. Only when none is present
// is the id used: its collection prefix (the part before the first '/')
// if it has one, otherwise the whole id.
func Classify(id string, attrs Attrs) Category {
	for _, key := range kindKeys {
		if v, ok := attrs[key].(string); ok && v != "" {
			return matchClass(v)
		}
	}
	name := id
	if i := strings.IndexByte(id, '/'); i >= 0 {
		name = id[:i]
	}
	return matchClass(name)
}

func matchClass(name string) Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, r := range classRules {
		if strings.Contains(lower, r.pattern) {
			return r.category
		}
	}
	return CategoryUnknown
}
