package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/estimation-api/internal/model"
)

func TestMergeRateSnapshot(t *testing.T) {
	t.Run("frozen rates win for known roles", func(t *testing.T) {
		previous := map[string]float64{"backenddeveloper": 50, "qaengineer": 30}
		current := map[string]float64{"backenddeveloper": 80, "qaengineer": 45, "frontenddeveloper": 40}

		merged := MergeRateSnapshot(previous, current)

		assert.Equal(t, 50.0, merged["backenddeveloper"])
		assert.Equal(t, 30.0, merged["qaengineer"])
		assert.Equal(t, 40.0, merged["frontenddeveloper"])
	})

	t.Run("roles removed from the rate map stay resolvable", func(t *testing.T) {
		previous := map[string]float64{"devopsengineer": 60}
		current := map[string]float64{"backenddeveloper": 50}

		merged := MergeRateSnapshot(previous, current)

		assert.Equal(t, 60.0, merged["devopsengineer"])
		assert.Equal(t, 50.0, merged["backenddeveloper"])
	})

	t.Run("nil previous snapshot is a plain copy", func(t *testing.T) {
		current := map[string]float64{"backenddeveloper": 50}

		merged := MergeRateSnapshot(nil, current)

		assert.Equal(t, current, merged)

		// Mutating the merged map must not touch the input.
		merged["backenddeveloper"] = 99
		assert.Equal(t, 50.0, current["backenddeveloper"])
	})
}

// Recalculating with a merged snapshot must reproduce the frozen pricing
// for roles that already had one, while new roles pick up current rates.
func TestRecalculationPreservesFrozenRates(t *testing.T) {
	settings := model.DefaultSettings()
	wbs := singleTaskWBS(40, "backenddeveloper", model.LevelLow)
	pricing := model.PricingParams{EstimatedTeamSize: 2}

	first, err := Calculate(wbs, map[string]float64{"backenddeveloper": 50}, settings, pricing)
	require.NoError(t, err)

	// The company doubles the backend rate, then recalculates with an
	// extra frontend task.
	currentRates := map[string]float64{"backenddeveloper": 100, "frontenddeveloper": 40}
	merged := MergeRateSnapshot(first.RateSnapshot, currentRates)

	grown := wbs
	grown.Modules = append(grown.Modules, model.Module{
		Name: "UI",
		Features: []model.Feature{{
			Name:  "Screens",
			Tasks: []model.Task{{Name: "layout", Hours: 10, Role: "frontenddeveloper", Level: model.LevelLow}},
		}},
	})

	second, err := Calculate(grown, merged, settings, pricing)
	require.NoError(t, err)

	assert.Equal(t, 50.0, second.RateSnapshot["backenddeveloper"])
	assert.Equal(t, 40.0, second.RateSnapshot["frontenddeveloper"])

	// The original module's cost is unchanged by the rate edit.
	assert.Equal(t, first.WBS.Modules[0].Cost, second.WBS.Modules[0].Cost)
}
