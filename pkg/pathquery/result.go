package pathquery

import "github.com/matzehuels/topoviz/pkg/errors"

// Hop is one step of a path: the vertex reached and the edge used to reach
// it. The first hop has no edge.
type Hop struct {
	VertexID string   `json:"vertex"`
	EdgeID   string   `json:"edge,omitempty"`
	Load     *float64 `json:"load,omitempty"`
}

// SRv6 is the segment routing data the service computed for a path.
type SRv6 struct {
	SIDList []string `json:"srv6_sid_list,omitempty"`
	USID    string   `json:"srv6_usid,omitempty"`
}

// LoadSummary aggregates edge loads along a path.
type LoadSummary struct {
	Average float64 `json:"average_load"`
	Total   float64 `json:"total_load"`
	Highest float64 `json:"highest_load"`
}

// Result is the answer to a path query.
type Result struct {
	Found       bool        `json:"found"`
	Source      string      `json:"source,omitempty"`
	Destination string      `json:"destination,omitempty"`
	Constraint  Constraint  `json:"constraint,omitempty"`
	Hops        []Hop       `json:"path"`
	HopCount    int         `json:"hopcount"`
	VertexCount int         `json:"vertex_count"`
	SRv6        SRv6        `json:"srv6_data"`
	Load        LoadSummary `json:"load_data"`
}

// Vertices returns the hop vertex ids in path order.
func (r *Result) Vertices() []string {
	out := make([]string, 0, len(r.Hops))
	for _, h := range r.Hops {
		if h.VertexID != "" {
			out = append(out, h.VertexID)
		}
	}
	return out
}

// Err returns a PATH_NOT_FOUND error when the query found no path.
func (r *Result) Err() error {
	if r == nil || !r.Found {
		return errors.New(errors.ErrCodePathNotFound, "no path found")
	}
	return nil
}

// Pair is an unordered source/destination pair.
type Pair struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Pairs returns every unordered pair of members, C(n,2) of them, in member
// order: (m0,m1), (m0,m2), ..., (m1,m2), ...
func Pairs(members []string) []Pair {
	if len(members) < 2 {
		return nil
	}
	out := make([]Pair, 0, len(members)*(len(members)-1)/2)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			out = append(out, Pair{Source: members[i], Destination: members[j]})
		}
	}
	return out
}
