package engine

// MergeRateSnapshot applies the freeze-on-first-use policy when an existing
// estimate is recalculated: roles already priced in the previous snapshot
// keep their frozen rate, and only roles new to the project pull from the
// current rate map. Roles that were frozen but have since been removed from
// the rate map stay resolvable at their frozen rate.
func MergeRateSnapshot(previous, current map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(current)+len(previous))
	for role, rate := range current {
		merged[role] = rate
	}
	for role, rate := range previous {
		merged[role] = rate
	}
	return merged
}
