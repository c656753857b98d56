package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	config, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultQuestionsPerSession, config.QuestionsPerSession)
	assert.Equal(t, DefaultSessionIntervalMinutes, config.SessionIntervalMinutes)
	assert.Equal(t, DefaultGroupPostIntervalMinutes, config.GroupPostIntervalMinutes)
	assert.Equal(t, 0.9, config.Difficulty.HighThreshold)
	assert.Equal(t, 0.7, config.Difficulty.LowThreshold)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_INTERVAL_MINUTES", "45")
	t.Setenv("MIN_ANSWERS_FOR_DIFFICULTY", "5")
	t.Setenv("SUCCESS_RATE_THRESHOLD_HIGH", "0.95")

	config, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 45, config.SessionIntervalMinutes)
	assert.Equal(t, 5, config.Difficulty.MinAnswers)
	assert.Equal(t, 0.95, config.Difficulty.HighThreshold)
}

func TestConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("SESSION_INTERVAL_MINUTES", "soon")
	t.Setenv("SUCCESS_RATE_THRESHOLD_LOW", "-1")

	config, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultSessionIntervalMinutes, config.SessionIntervalMinutes)
	assert.Equal(t, 0.7, config.Difficulty.LowThreshold)
}

// A threshold ordering that would misbehave mid-run must fail startup
func TestConfigRejectsInvertedThresholds(t *testing.T) {
	t.Setenv("SUCCESS_RATE_THRESHOLD_HIGH", "0.6")
	t.Setenv("SUCCESS_RATE_THRESHOLD_LOW", "0.7")

	_, err := ConfigFromEnv()
	require.Error(t, err)
}
