package report

import (
	"math"
	"testing"
	"time"
)

func TestSynthesizeBasics(t *testing.T) {
	t.Parallel()

	in := Input{
		FinalAbility: 0.8,
		FinalSE:      0.3,
		Responses: []ResponseSummary{
			{Topic: "algebra", Correct: true},
			{Topic: "algebra", Correct: true},
			{Topic: "geometry", Correct: false},
			{Topic: "geometry", Correct: true},
		},
		PoolTopicAccuracy: map[string]float64{"algebra": 0.7, "geometry": 0.6},
		TotalTime:         90 * time.Second,
	}

	rep := Synthesize(in)
	if rep.QuestionsAnswered != 4 {
		t.Fatalf("questions answered: got=%d want=4", rep.QuestionsAnswered)
	}
	if math.Abs(rep.AccuracyRate-0.75) > 1e-9 {
		t.Fatalf("accuracy: got=%v want=0.75", rep.AccuracyRate)
	}
	if math.Abs(rep.ConfidenceLow-(0.8-1.96*0.3)) > 1e-9 {
		t.Fatalf("confidence low: got=%v", rep.ConfidenceLow)
	}
	if math.Abs(rep.ConfidenceHigh-(0.8+1.96*0.3)) > 1e-9 {
		t.Fatalf("confidence high: got=%v", rep.ConfidenceHigh)
	}
	if rep.AbilityPercentile <= 50 || rep.AbilityPercentile >= 100 {
		t.Fatalf("percentile for theta=0.8 should sit in (50, 100): got=%v", rep.AbilityPercentile)
	}
	if rep.TotalTimeSeconds != 90 {
		t.Fatalf("total time: got=%d want=90", rep.TotalTimeSeconds)
	}
}

func TestSynthesizeTopicBreakdownSorted(t *testing.T) {
	t.Parallel()

	in := Input{
		Responses: []ResponseSummary{
			{Topic: "geometry", Correct: true},
			{Topic: "algebra", Correct: false},
			{Topic: "algebra", Correct: true},
		},
		PoolTopicAccuracy: map[string]float64{"algebra": 0.9, "geometry": 0.5},
	}
	rep := Synthesize(in)
	if len(rep.Topics) != 2 || rep.Topics[0].Topic != "algebra" || rep.Topics[1].Topic != "geometry" {
		t.Fatalf("topics not sorted: %+v", rep.Topics)
	}

	// algebra 50% vs pool 90% is a weakness; geometry 100% vs 50% a strength.
	if len(rep.TopicWeaknesses) != 1 || rep.TopicWeaknesses[0] != "algebra" {
		t.Fatalf("weaknesses: %v", rep.TopicWeaknesses)
	}
	if len(rep.TopicStrengths) != 1 || rep.TopicStrengths[0] != "geometry" {
		t.Fatalf("strengths: %v", rep.TopicStrengths)
	}
}

func TestPerformanceLevels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		correct int
		total   int
		want    PerformanceLevel
	}{
		{9, 10, LevelExcellent},
		{8, 10, LevelGood},
		{7, 10, LevelSatisfactory},
		{6, 10, LevelNeedsImprovement},
		{5, 10, LevelRequiresFocus},
		{0, 10, LevelRequiresFocus},
	}
	for _, tc := range cases {
		responses := make([]ResponseSummary, tc.total)
		for i := range responses {
			responses[i] = ResponseSummary{Topic: "algebra", Correct: i < tc.correct}
		}
		rep := Synthesize(Input{Responses: responses})
		if rep.PerformanceLevel != tc.want {
			t.Fatalf("%d/%d correct: got=%s want=%s", tc.correct, tc.total, rep.PerformanceLevel, tc.want)
		}
	}
}

func TestSynthesizeInfiniteSE(t *testing.T) {
	t.Parallel()

	rep := Synthesize(Input{FinalAbility: 0.5, FinalSE: math.Inf(1)})
	if rep.ConfidenceLow != 0.5 || rep.ConfidenceHigh != 0.5 {
		t.Fatalf("interval must collapse when SE is unusable: [%v, %v]", rep.ConfidenceLow, rep.ConfidenceHigh)
	}
}

func TestRecommendedDifficultyGrid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		theta float64
		want  float64
	}{
		{0.0, 0.0},
		{0.3, 0.5},
		{0.2, 0.0},
		{-1.4, -1.5},
		{3.9, 3.0},
		{-3.8, -3.0},
	}
	for _, tc := range cases {
		rep := Synthesize(Input{FinalAbility: tc.theta})
		if rep.RecommendedNextDifficulty != tc.want {
			t.Fatalf("theta=%v: got=%v want=%v", tc.theta, rep.RecommendedNextDifficulty, tc.want)
		}
	}
}
