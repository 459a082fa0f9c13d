package pathquery

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/matzehuels/topoviz/pkg/errors"
)

// wireResponse mirrors the graph service answer. Hop entries may be id
// strings or documents carrying _id.
type wireResponse struct {
	Found       *bool      `json:"found"`
	Path        []wireHop  `json:"path"`
	HopCount    *number    `json:"hopcount"`
	VertexCount *number    `json:"vertex_count"`
	SRv6        *wireSRv6  `json:"srv6_data"`
	LoadData    *wireLoads `json:"load_data"`
}

type wireHop struct {
	Vertex ref `json:"vertex"`
	Edge   ref `json:"edge"`
}

type wireSRv6 struct {
	SIDList sidList `json:"srv6_sid_list"`
	USID    string  `json:"srv6_usid"`
}

type wireLoads struct {
	Average number `json:"average_load"`
	Total   number `json:"total_load"`
	Highest number `json:"highest_load"`
}

// ref is a document reference: either "id" or {"_id": "id", ...}.
type ref struct {
	ID   string
	Load *float64
}

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var doc struct {
		ID   string  `json:"_id"`
		Alt  string  `json:"id"`
		Load *number `json:"load"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	r.ID = doc.ID
	if r.ID == "" {
		r.ID = doc.Alt
	}
	if doc.Load != nil {
		v := float64(*doc.Load)
		r.Load = &v
	}
	return nil
}

// number accepts JSON numbers and numeric strings.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// sidList accepts a list of SID strings or SID documents.
type sidList []string

func (s *sidList) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	for _, item := range items {
		var str string
		if json.Unmarshal(item, &str) == nil {
			if str != "" {
				*s = append(*s, str)
			}
			continue
		}
		var doc struct {
			SID string `json:"srv6_sid"`
			Alt string `json:"sid"`
		}
		if err := json.Unmarshal(item, &doc); err != nil {
			return err
		}
		if doc.SID == "" {
			doc.SID = doc.Alt
		}
		if doc.SID != "" {
			*s = append(*s, doc.SID)
		}
	}
	return nil
}

// DecodeResult parses a graph service answer. Missing counters are derived
// from the path; a missing found flag means found when the path is
// non-empty.
func DecodeResult(data []byte) (*Result, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodePathQuery, err, "decode path response")
	}

	res := &Result{Hops: make([]Hop, 0, len(w.Path))}
	for _, h := range w.Path {
		hop := Hop{VertexID: h.Vertex.ID, EdgeID: h.Edge.ID, Load: h.Edge.Load}
		res.Hops = append(res.Hops, hop)
	}

	if w.Found != nil {
		res.Found = *w.Found
	} else {
		res.Found = len(res.Hops) > 0
	}
	if !res.Found {
		res.Hops = nil
		return res, nil
	}

	res.VertexCount = len(res.Hops)
	if w.VertexCount != nil {
		res.VertexCount = int(*w.VertexCount)
	}
	res.HopCount = max(len(res.Hops)-1, 0)
	if w.HopCount != nil {
		res.HopCount = int(*w.HopCount)
	}
	if w.SRv6 != nil {
		res.SRv6 = SRv6{SIDList: []string(w.SRv6.SIDList), USID: w.SRv6.USID}
	}
	if w.LoadData != nil {
		res.Load = LoadSummary{
			Average: float64(w.LoadData.Average),
			Total:   float64(w.LoadData.Total),
			Highest: float64(w.LoadData.Highest),
		}
	} else {
		res.Load = summarize(res.Hops)
	}
	return res, nil
}

// summarize derives a load summary from per-hop edge loads.
func summarize(hops []Hop) LoadSummary {
	var s LoadSummary
	n := 0
	for _, h := range hops {
		if h.Load == nil {
			continue
		}
		s.Total += *h.Load
		s.Highest = max(s.Highest, *h.Load)
		n++
	}
	if n > 0 {
		s.Average = s.Total / float64(n)
	}
	return s
}
