// Package weight maps merge request sizes to counting multipliers.
package weight

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Rule weights merge requests whose changed-line count does not exceed
// Threshold. Rules are ordered ascending by threshold; the first match
// applies.
type Rule struct {
	Threshold int
	Weight    float64
}

// Rules is an ordered set of weight rules.
type Rules []Rule

// ParseRules parses a configuration string of threshold:weight pairs
// separated by comma or semicolon, e.g. "20:0.3,80:0.6,200:1.0".
// Malformed segments are logged and dropped; parsing never fails, it
// degrades to fewer or no rules.
func ParseRules(raw string, logger *zap.Logger) Rules {
	if logger == nil {
		logger = zap.NewNop()
	}
	var rules Rules
	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parts := strings.SplitN(segment, ":", 2)
		if len(parts) != 2 {
			logger.Warn("dropping weight rule segment without separator", zap.String("segment", segment))
			continue
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			logger.Warn("dropping weight rule with non-numeric threshold", zap.String("segment", segment))
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			logger.Warn("dropping weight rule with non-numeric weight", zap.String("segment", segment))
			continue
		}
		if threshold < 0 {
			logger.Warn("dropping weight rule with negative threshold", zap.String("segment", segment))
			continue
		}
		if w <= 0 {
			logger.Warn("dropping weight rule with non-positive weight", zap.String("segment", segment))
			continue
		}
		rules = append(rules, Rule{Threshold: threshold, Weight: w})
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Threshold < rules[j].Threshold
	})
	return rules
}

// WeightFor returns the multiplier for a merge request with the given
// changed-line count. A nil count (size unknown) or an empty rule set
// yields 1.0, as does a count above every threshold. Matched weights
// are clamped to [0, 1].
func (r Rules) WeightFor(linesChanged *int) float64 {
	if len(r) == 0 || linesChanged == nil {
		return 1.0
	}
	for _, rule := range r {
		if rule.Threshold >= *linesChanged {
			if rule.Weight > 1.0 {
				return 1.0
			}
			return rule.Weight
		}
	}
	return 1.0
}
