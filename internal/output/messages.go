package output

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var messagesYAML []byte

type messageCatalog struct {
	RankingEmojis []string            `yaml:"ranking_emojis"`
	DefaultEmoji  string              `yaml:"default_emoji"`
	Tiers         map[string][]string `yaml:"tiers"`
}

var (
	rankingEmojis []string
	defaultEmoji  string
	messageTiers  map[string][]string
)

func init() {
	var catalog messageCatalog
	if err := yaml.Unmarshal(messagesYAML, &catalog); err != nil {
		panic("output: embedded messages.yaml is invalid: " + err.Error())
	}
	rankingEmojis = catalog.RankingEmojis
	defaultEmoji = catalog.DefaultEmoji
	messageTiers = catalog.Tiers
}

// Thresholds separating the motivational message tiers, applied to the
// monthly total.
const (
	highActivityThreshold   = 20
	mediumActivityThreshold = 5
)

// MotivationalMessage picks the representative message for the
// activity tier the monthly total falls into.
func MotivationalMessage(monthlyTotal float64) string {
	var tier string
	switch {
	case monthlyTotal >= highActivityThreshold:
		tier = "high_activity"
	case monthlyTotal >= mediumActivityThreshold:
		tier = "medium_activity"
	default:
		tier = "encouraging"
	}
	pool := messageTiers[tier]
	if len(pool) == 0 {
		return "🎉 Great work team!"
	}
	return pool[0]
}
