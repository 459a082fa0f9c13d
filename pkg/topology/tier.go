package topology

// Tier names, in ordinal order from the access edge down to dc leaves.
const (
	TierEndpoint   = "endpoint"
	TierAccess0    = "access-tier-0"
	TierAccess1    = "access-tier-1"
	TierAccess2    = "access-tier-2"
	TierWANEdge    = "wan-edge"
	TierWAN0       = "wan-tier-0"
	TierWAN1       = "wan-tier-1"
	TierWAN2       = "wan-tier-2"
	TierWANCore    = "wan-core"
	TierDCI1       = "dci-tier-1"
	TierDCI0       = "dci-tier-0"
	TierDCGateway  = "dc-gateway"
	TierDC4        = "dc-tier-4"
	TierDC3        = "dc-tier-3"
	TierDC2        = "dc-tier-2"
	TierDC1        = "dc-tier-1"
	TierDC0        = "dc-tier-0"
	TierDCHost     = "dc-host"
	TierDCPrefix   = "dc-prefix"
	TierDCWorkload = "dc-workload"
)

// Tiers is the fixed tier table. A tier's ordinal is its index.
var Tiers = []string{
	TierEndpoint,
	TierAccess0,
	TierAccess1,
	TierAccess2,
	TierWANEdge,
	TierWAN0,
	TierWAN1,
	TierWAN2,
	TierWANCore,
	TierDCI1,
	TierDCI0,
	TierDCGateway,
	TierDC4,
	TierDC3,
	TierDC2,
	TierDC1,
	TierDC0,
	TierDCHost,
	TierDCPrefix,
	TierDCWorkload,
}

var tierOrdinals = func() map[string]int {
	m := make(map[string]int, len(Tiers))
	for i, t := range Tiers {
		m[t] = i
	}
	return m
}()

// TierOrdinal returns the ordinal of a tier name.
func TierOrdinal(tier string) (int, bool) {
	ord, ok := tierOrdinals[tier]
	return ord, ok
}

// IsLeafTier reports whether tier holds leaf nodes (prefixes and workloads)
// that are placed under a parent rather than spread across the tier.
func IsLeafTier(tier string) bool {
	return tier == TierDCPrefix || tier == TierDCWorkload
}
