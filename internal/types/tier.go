// Package types provides the shared data model for GEO scoring: tiers, evidence,
// per-pillar results and the aggregated report.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Tier is a subscription level controlling which pillars are active.
type Tier string

// Tier constants, ordered from the smallest pillar set to the largest.
const (
	TierFree   Tier = "free"
	TierPro    Tier = "pro"
	TierAgency Tier = "agency"
)

// AllTiers lists the tiers in ascending order.
var AllTiers = []Tier{TierFree, TierPro, TierAgency}

var tierRank = map[Tier]int{
	TierFree:   0,
	TierPro:    1,
	TierAgency: 2,
}

// ParseTier converts a user supplied string into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierRank[t]; !ok {
		return "", fmt.Errorf("invalid tier %q: must be free, pro, or agency", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Rank returns the position of the tier in the ascending order, or -1 if unknown.
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return -1
}

// Includes returns true when every pillar available to other is also available to t.
func (t Tier) Includes(other Tier) bool {
	return t.Valid() && other.Valid() && tierRank[t] >= tierRank[other]
}

func (t Tier) String() string {
	return string(t)
}

// PillarKey identifies a pillar in reports and registries (e.g. "readability").
type PillarKey string

func (k PillarKey) String() string {
	return string(k)
}
