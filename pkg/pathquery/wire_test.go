package pathquery

import (
	"testing"

	"github.com/matzehuels/topoviz/pkg/errors"
)

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		found     bool
		vertices  []string
		edges     []string
		hopCount  int
		vertCount int
		sids      []string
		usid      string
		load      LoadSummary
	}{
		{
			name: "string refs",
			body: `{"found":true,"path":[{"vertex":"igp_node/r1","edge":null},{"vertex":"igp_node/r2","edge":"e/1"}],
				"hopcount":1,"vertex_count":2,
				"srv6_data":{"srv6_sid_list":["fc00:0:1::","fc00:0:2::"],"srv6_usid":"fc00:0:1:2::"},
				"load_data":{"average_load":30,"total_load":30,"highest_load":30}}`,
			found:     true,
			vertices:  []string{"igp_node/r1", "igp_node/r2"},
			edges:     []string{"", "e/1"},
			hopCount:  1,
			vertCount: 2,
			sids:      []string{"fc00:0:1::", "fc00:0:2::"},
			usid:      "fc00:0:1:2::",
			load:      LoadSummary{Average: 30, Total: 30, Highest: 30},
		},
		{
			name: "document refs and derived counters",
			body: `{"path":[{"vertex":{"_id":"a"}},{"vertex":{"_id":"b"},"edge":{"_id":"e1","load":"20"}},{"vertex":{"_id":"c"},"edge":{"_id":"e2","load":60}}],
				"srv6_data":{"srv6_sid_list":[{"srv6_sid":"fc00::a"},"fc00::b"]}}`,
			found:     true,
			vertices:  []string{"a", "b", "c"},
			edges:     []string{"", "e1", "e2"},
			hopCount:  2,
			vertCount: 3,
			sids:      []string{"fc00::a", "fc00::b"},
			load:      LoadSummary{Average: 40, Total: 80, Highest: 60},
		},
		{
			name:  "not found",
			body:  `{"found":false,"path":[]}`,
			found: false,
		},
		{
			name:  "empty path without flag",
			body:  `{}`,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeResult([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeResult() error: %v", err)
			}
			if res.Found != tt.found {
				t.Fatalf("Found = %v, want %v", res.Found, tt.found)
			}
			if !tt.found {
				if len(res.Hops) != 0 {
					t.Errorf("not-found result has %d hops", len(res.Hops))
				}
				if !errors.Is(res.Err(), errors.ErrCodePathNotFound) {
					t.Errorf("Err() = %v, want PATH_NOT_FOUND", res.Err())
				}
				return
			}
			if res.Err() != nil {
				t.Errorf("Err() = %v, want nil", res.Err())
			}
			if got := res.Vertices(); !equal(got, tt.vertices) {
				t.Errorf("Vertices() = %v, want %v", got, tt.vertices)
			}
			for i, h := range res.Hops {
				if h.EdgeID != tt.edges[i] {
					t.Errorf("hop %d edge = %q, want %q", i, h.EdgeID, tt.edges[i])
				}
			}
			if res.HopCount != tt.hopCount || res.VertexCount != tt.vertCount {
				t.Errorf("counts = %d/%d, want %d/%d", res.HopCount, res.VertexCount, tt.hopCount, tt.vertCount)
			}
			if !equal(res.SRv6.SIDList, tt.sids) || res.SRv6.USID != tt.usid {
				t.Errorf("SRv6 = %+v, want %v %q", res.SRv6, tt.sids, tt.usid)
			}
			if res.Load != tt.load {
				t.Errorf("Load = %+v, want %+v", res.Load, tt.load)
			}
		})
	}
}

func TestDecodeResultMalformed(t *testing.T) {
	for _, body := range []string{`not json`, `{"path":[{"vertex":42}]}`, `{"hopcount":"many"}`} {
		_, err := DecodeResult([]byte(body))
		if !errors.Is(err, errors.ErrCodePathQuery) {
			t.Errorf("DecodeResult(%s) error = %v, want PATH_QUERY_FAILED", body, err)
		}
	}
}

func TestPairs(t *testing.T) {
	if got := Pairs([]string{"a"}); got != nil {
		t.Errorf("Pairs(1) = %v, want nil", got)
	}
	got := Pairs([]string{"a", "b", "c"})
	want := []Pair{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if len(got) != len(want) {
		t.Fatalf("Pairs(3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
	if n := len(Pairs([]string{"a", "b", "c", "d", "e"})); n != 10 {
		t.Errorf("Pairs(5) has %d pairs, want 10", n)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
