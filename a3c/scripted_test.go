package a3c

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScriptedFactory_UnknownMap(t *testing.T) {
	_, err := NewScriptedFactory("atlantis", DefaultSpatialConfig(), NewTrainingKey(1))
	assert.ErrorIs(t, err, ErrUnknownMap)
}

func TestKnownMaps_Sorted(t *testing.T) {
	maps := KnownMaps()
	require.Contains(t, maps, "skirmish")
	require.Contains(t, maps, "drill")
	for i := 1; i < len(maps); i++ {
		if maps[i-1] >= maps[i] {
			t.Errorf("map names not sorted: %v", maps)
		}
	}
}

func TestDrillEnv_FixedRewardPattern(t *testing.T) {
	factory, err := NewScriptedFactory("drill", DefaultSpatialConfig(), NewTrainingKey(1))
	require.NoError(t, err)
	env, err := factory(0)
	require.NoError(t, err)
	defer env.Close()

	obs, err := env.Reset()
	require.NoError(t, err)
	assert.False(t, obs.Terminal)
	assert.Equal(t, []int{0, 7}, obs.AvailableActionIDs)

	wantRewards := []float64{1, 0, 1, 0, 1}
	for i, want := range wantRewards {
		obs, err = env.Step(ActionCall{FunctionID: 0})
		require.NoError(t, err)
		assert.Equal(t, want, obs.Reward, "step %d", i+1)
		assert.Equal(t, i == len(wantRewards)-1, obs.Terminal, "step %d", i+1)
	}
}

func TestSkirmishEnv_AttackNearEnemyScores(t *testing.T) {
	sp := DefaultSpatialConfig()
	factory, err := NewScriptedFactory("skirmish", sp, NewTrainingKey(7))
	require.NoError(t, err)
	env, err := factory(0)
	require.NoError(t, err)
	defer env.Close()

	obs, err := env.Reset()
	require.NoError(t, err)

	// Find an enemy on the player-relative channel and attack it directly.
	enc := DefaultEncoderConfig()
	var ex, ey int
	found := false
	for y := range obs.Screen[enc.PlayerRelativeChannel] {
		for x, v := range obs.Screen[enc.PlayerRelativeChannel][y] {
			if v == enc.EnemyMarker {
				ex, ey = x, y
				found = true
			}
		}
	}
	require.True(t, found, "no enemies on screen after reset")

	obs, err = env.Step(ActionCall{
		FunctionID: attackScreenID,
		Args:       [][]int{{0}, {ex, ey}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, obs.Reward)
}

func TestSkirmishEnv_MissedAttackScoresNothing(t *testing.T) {
	sp := DefaultSpatialConfig()
	factory, err := NewScriptedFactory("skirmish", sp, NewTrainingKey(7))
	require.NoError(t, err)
	env, err := factory(1)
	require.NoError(t, err)
	defer env.Close()

	obs, err := env.Reset()
	require.NoError(t, err)

	// No-op never scores.
	obs, err = env.Step(ActionCall{FunctionID: noOpID})
	require.NoError(t, err)
	assert.Equal(t, 0.0, obs.Reward)
}

func TestScriptedFactory_DeterministicPerWorker(t *testing.T) {
	sp := DefaultSpatialConfig()
	build := func() *RawObservation {
		factory, err := NewScriptedFactory("skirmish", sp, NewTrainingKey(42))
		require.NoError(t, err)
		env, err := factory(3)
		require.NoError(t, err)
		defer env.Close()
		obs, err := env.Reset()
		require.NoError(t, err)
		return obs
	}
	a, b := build(), build()
	enc := DefaultEncoderConfig()
	assert.Equal(t, a.Screen[enc.PlayerRelativeChannel], b.Screen[enc.PlayerRelativeChannel])
}
