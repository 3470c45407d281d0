// Package scoring composes pillar scorers into tier-gated GEO reports.
package scoring

import (
	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/types"
)

// PillarInfo describes one registered pillar.
type PillarInfo struct {
	Key      types.PillarKey `json:"key"`
	Name     string          `json:"name"`
	Tier     types.Tier      `json:"tier"`
	MaxScore float64         `json:"max_score"`
}

// registry is the built-in pillar table in registry order. Budgets per tier add
// up to 100 (free), +35 (pro) and +40 (agency).
var registry = []PillarInfo{
	{Key: pillars.KeyStructure, Name: "Content Structure", Tier: types.TierFree, MaxScore: 15},
	{Key: pillars.KeyReadability, Name: "Readability", Tier: types.TierFree, MaxScore: 15},
	{Key: pillars.KeyConfidence, Name: "Declarative Confidence", Tier: types.TierFree, MaxScore: 15},
	{Key: pillars.KeyMachineReadability, Name: "Machine Readability", Tier: types.TierFree, MaxScore: 15},
	{Key: pillars.KeyBotAccess, Name: "AI Bot Accessibility", Tier: types.TierFree, MaxScore: 10},
	{Key: pillars.KeyDefinitions, Name: "Definitional Clarity", Tier: types.TierFree, MaxScore: 10},
	{Key: pillars.KeyFreshness, Name: "Content Freshness", Tier: types.TierFree, MaxScore: 10},
	{Key: pillars.KeyAuthority, Name: "Citations & Authority", Tier: types.TierFree, MaxScore: 10},
	{Key: pillars.KeyEntity, Name: "Entity Clarity", Tier: types.TierPro, MaxScore: 20},
	{Key: pillars.KeyFAQ, Name: "Question Coverage", Tier: types.TierPro, MaxScore: 15},
	{Key: pillars.KeyChunkability, Name: "Retrieval Chunkability", Tier: types.TierAgency, MaxScore: 15},
	{Key: pillars.KeyDepth, Name: "Topical Depth", Tier: types.TierAgency, MaxScore: 15},
	{Key: pillars.KeyUniqueness, Name: "Corpus Uniqueness", Tier: types.TierAgency, MaxScore: 10},
}

// Registry returns a copy of the built-in pillar table.
func Registry() []PillarInfo {
	return append([]PillarInfo(nil), registry...)
}

// SelectPillars returns the built-in pillar keys active for tier, in registry order.
func SelectPillars(tier types.Tier) ([]types.PillarKey, error) {
	if !tier.Valid() {
		return nil, &UnknownTierError{Tier: string(tier)}
	}
	var keys []types.PillarKey
	for _, p := range registry {
		if tier.Includes(p.Tier) {
			keys = append(keys, p.Key)
		}
	}
	return keys, nil
}

// TierBudget returns the maximum score available to tier.
func TierBudget(tier types.Tier) (float64, error) {
	if !tier.Valid() {
		return 0, &UnknownTierError{Tier: string(tier)}
	}
	var total float64
	for _, p := range registry {
		if tier.Includes(p.Tier) {
			total += p.MaxScore
		}
	}
	return total, nil
}

// PillarTier returns the tier a built-in pillar belongs to.
func PillarTier(key types.PillarKey) (types.Tier, bool) {
	for _, p := range registry {
		if p.Key == key {
			return p.Tier, true
		}
	}
	return "", false
}
