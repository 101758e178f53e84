// Package report turns a completed session's response history into a
// performance report. Synthesis is a pure function with no side effects.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/brightpath/assessment-engine/internal/engine/irt"
)

type PerformanceLevel string

const (
	LevelExcellent        PerformanceLevel = "Excellent"
	LevelGood             PerformanceLevel = "Good"
	LevelSatisfactory     PerformanceLevel = "Satisfactory"
	LevelNeedsImprovement PerformanceLevel = "Needs Improvement"
	LevelRequiresFocus    PerformanceLevel = "Requires Focus"
)

type ResponseSummary struct {
	Topic   string
	Correct bool
}

type Input struct {
	FinalAbility float64
	FinalSE      float64
	Responses    []ResponseSummary
	// PoolTopicAccuracy is the historical per-topic correct rate across the
	// pool, the baseline for strengths and weaknesses.
	PoolTopicAccuracy map[string]float64
	TotalTime         time.Duration
}

type TopicBreakdown struct {
	Topic       string  `json:"topic"`
	Answered    int     `json:"answered"`
	Correct     int     `json:"correct"`
	Accuracy    float64 `json:"accuracy"`
	PoolAverage float64 `json:"pool_average"`
}

type Report struct {
	FinalAbility              float64          `json:"final_ability"`
	FinalSE                   float64          `json:"final_se"`
	ConfidenceLow             float64          `json:"confidence_low"`
	ConfidenceHigh            float64          `json:"confidence_high"`
	AbilityPercentile         float64          `json:"ability_percentile"`
	PerformanceLevel          PerformanceLevel `json:"performance_level"`
	AccuracyRate              float64          `json:"accuracy_rate"`
	QuestionsAnswered         int              `json:"questions_answered"`
	Topics                    []TopicBreakdown `json:"topics"`
	TopicStrengths            []string         `json:"topic_strengths"`
	TopicWeaknesses           []string         `json:"topic_weaknesses"`
	RecommendedNextDifficulty float64          `json:"recommended_next_difficulty"`
	TotalTimeSeconds          int              `json:"total_time_seconds"`
}

func Synthesize(in Input) Report {
	answered := len(in.Responses)
	var correct int
	byTopic := map[string]*TopicBreakdown{}
	for _, r := range in.Responses {
		if r.Correct {
			correct++
		}
		tb, ok := byTopic[r.Topic]
		if !ok {
			tb = &TopicBreakdown{Topic: r.Topic, PoolAverage: in.PoolTopicAccuracy[r.Topic]}
			byTopic[r.Topic] = tb
		}
		tb.Answered++
		if r.Correct {
			tb.Correct++
		}
	}

	var accuracy float64
	if answered > 0 {
		accuracy = float64(correct) / float64(answered)
	}

	topics := make([]TopicBreakdown, 0, len(byTopic))
	var strengths, weaknesses []string
	for _, tb := range byTopic {
		tb.Accuracy = float64(tb.Correct) / float64(tb.Answered)
		topics = append(topics, *tb)
		if tb.Accuracy >= tb.PoolAverage {
			strengths = append(strengths, tb.Topic)
		} else {
			weaknesses = append(weaknesses, tb.Topic)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Topic < topics[j].Topic })
	sort.Strings(strengths)
	sort.Strings(weaknesses)

	se := in.FinalSE
	if math.IsInf(se, 1) || math.IsNaN(se) {
		se = 0
	}

	return Report{
		FinalAbility:              in.FinalAbility,
		FinalSE:                   in.FinalSE,
		ConfidenceLow:             in.FinalAbility - 1.96*se,
		ConfidenceHigh:            in.FinalAbility + 1.96*se,
		AbilityPercentile:         irt.StandardNormalCDF(in.FinalAbility) * 100,
		PerformanceLevel:          level(accuracy * 100),
		AccuracyRate:              accuracy,
		QuestionsAnswered:         answered,
		Topics:                    topics,
		TopicStrengths:            strengths,
		TopicWeaknesses:           weaknesses,
		RecommendedNextDifficulty: recommendedDifficulty(in.FinalAbility),
		TotalTimeSeconds:          int(in.TotalTime.Seconds()),
	}
}

func level(score float64) PerformanceLevel {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 80:
		return LevelGood
	case score >= 70:
		return LevelSatisfactory
	case score >= 60:
		return LevelNeedsImprovement
	default:
		return LevelRequiresFocus
	}
}

// recommendedDifficulty targets follow-up material near the final ability,
// rounded to the half-point grid item authors work in.
func recommendedDifficulty(theta float64) float64 {
	d := math.Round(theta*2) / 2
	if d < -3 {
		return -3
	}
	if d > 3 {
		return 3
	}
	return d
}
