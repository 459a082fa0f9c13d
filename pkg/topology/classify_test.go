package topology

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		attrs Attrs
		want  Category
	}{
		{"explicit igp", "x/1", Attrs{"collection": "igp_node"}, CategoryIGP},
		{"explicit beats id", "bgp_node/1", Attrs{"kind": "workload"}, CategoryWorkload},
		{"underscore collection", "n1", Attrs{"_collection": "ls_prefix"}, CategoryPrefix},
		{"explicit polarfly", "p/1", Attrs{"kind": "polarfly_V1c"}, CategoryPolarflyV1c},
		{"explicit unknown kind", "igp_node/1", Attrs{"kind": "switch"}, CategoryUnknown},
		{"id prefix igp", "igp_node/2_0_0_0000.0000.0001", nil, CategoryIGP},
		{"id prefix bgp", "bgp_node/65001", nil, CategoryBGP},
		{"bgp prefix is a prefix", "ebgp_prefix_v6/fc00:1::_64", nil, CategoryPrefix},
		{"gpu collection", "gpus/gpu-07", nil, CategoryWorkload},
		{"polarfly w", "polarfly_W/3", nil, CategoryPolarflyW},
		{"polarfly v1n", "polarfly_V1n/0", nil, CategoryPolarflyV1n},
		{"polarfly v2", "polarfly_V2/12", nil, CategoryPolarflyV2},
		{"bare id", "r1", nil, CategoryUnknown},
		{"bare workload id", "host-12", nil, CategoryWorkload},
		{"empty explicit falls through", "igp_node/1", Attrs{"kind": ""}, CategoryIGP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.id, tt.attrs); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestTierOrdinal(t *testing.T) {
	if len(Tiers) != 20 {
		t.Fatalf("tier table has %d levels, want 20", len(Tiers))
	}

	tests := []struct {
		tier string
		want int
		ok   bool
	}{
		{TierEndpoint, 0, true},
		{TierWANCore, 8, true},
		{TierDC0, 16, true},
		{TierDCPrefix, 18, true},
		{TierDCWorkload, 19, true},
		{"spine", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			got, ok := TierOrdinal(tt.tier)
			if ok != tt.ok || got != tt.want {
				t.Errorf("TierOrdinal(%q) = %d, %v; want %d, %v", tt.tier, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCategoryPriority(t *testing.T) {
	if CategoryIGP.Priority() >= CategoryBGP.Priority() {
		t.Error("igp should come before bgp")
	}
	if CategoryUnknown.Priority() != len(Categories)-1 {
		t.Error("unknown should be last")
	}
	if !CategoryPolarflyV2.IsPolarfly() || CategoryPrefix.IsPolarfly() {
		t.Error("IsPolarfly misclassifies")
	}
}
