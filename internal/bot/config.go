package bot

import (
	"os"
	"strconv"

	"github.com/example/greekbot/internal/quiz"
)

// Default delivery settings
const (
	DefaultQuestionsPerSession      = 5
	DefaultSessionIntervalMinutes   = 15
	DefaultGroupPostIntervalMinutes = 30
)

// Config holds the bot's tunable settings
type Config struct {
	QuestionsPerSession      int
	SessionIntervalMinutes   int
	GroupPostIntervalMinutes int
	Difficulty               quiz.Difficulty
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		QuestionsPerSession:      DefaultQuestionsPerSession,
		SessionIntervalMinutes:   DefaultSessionIntervalMinutes,
		GroupPostIntervalMinutes: DefaultGroupPostIntervalMinutes,
		Difficulty:               quiz.DefaultDifficulty(),
	}
}

// ConfigFromEnv builds the configuration from environment variables, falling
// back to defaults for anything unset or unparsable. The difficulty tuning is
// validated so a bad threshold ordering fails startup instead of mid-run.
func ConfigFromEnv() (*Config, error) {
	c := DefaultConfig()

	c.QuestionsPerSession = envInt("QUESTIONS_PER_SESSION", c.QuestionsPerSession)
	c.SessionIntervalMinutes = envInt("SESSION_INTERVAL_MINUTES", c.SessionIntervalMinutes)
	c.GroupPostIntervalMinutes = envInt("GROUP_POST_INTERVAL_MINUTES", c.GroupPostIntervalMinutes)

	c.Difficulty.MinAnswers = envInt("MIN_ANSWERS_FOR_DIFFICULTY", c.Difficulty.MinAnswers)
	c.Difficulty.HighThreshold = envFloat("SUCCESS_RATE_THRESHOLD_HIGH", c.Difficulty.HighThreshold)
	c.Difficulty.LowThreshold = envFloat("SUCCESS_RATE_THRESHOLD_LOW", c.Difficulty.LowThreshold)
	c.Difficulty.LowWeight = envFloat("DIFFICULTY_MULTIPLIER_LOW", c.Difficulty.LowWeight)
	c.Difficulty.NormalWeight = envFloat("DIFFICULTY_MULTIPLIER_NORMAL", c.Difficulty.NormalWeight)
	c.Difficulty.HighWeight = envFloat("DIFFICULTY_MULTIPLIER_HIGH", c.Difficulty.HighWeight)

	if err := c.Difficulty.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func envInt(name string, fallback int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
