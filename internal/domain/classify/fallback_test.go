package classify_test

import (
	"strings"
	"testing"

	"github.com/vcalderon2009/note-taker/internal/domain/classify"
	"github.com/vcalderon2009/note-taker/internal/domain/prompts"
)

func testFallbackConfig() prompts.Fallback {
	return prompts.Fallback{
		TaskKeywords:    []string{"todo", "need to", "remind me"},
		NoteKeywords:    []string{"note:", "remember that"},
		ListSeparators:  []string{"\n-", ";"},
		MeetingKeywords: []string{"meeting", "standup"},
	}
}

func TestFallbackClassify_RuleChain(t *testing.T) {
	longList := "Meeting notes from today. " + strings.Repeat("first point; second point; ", 5)

	tests := []struct {
		name           string
		text           string
		wantCategory   classify.Category
		wantConfidence float64
	}{
		{
			name:           "rule 1: long message with list separators",
			text:           longList,
			wantCategory:   classify.CategoryBrainDump,
			wantConfidence: 0.70,
		},
		{
			name:           "rule 2: task keyword",
			text:           "todo buy milk",
			wantCategory:   classify.CategoryTask,
			wantConfidence: 0.65,
		},
		{
			name:           "rule 3: note keyword",
			text:           "note: the wifi password is hunter2",
			wantCategory:   classify.CategoryNote,
			wantConfidence: 0.60,
		},
		{
			name:           "rule 4: nothing matches",
			text:           "hello there",
			wantCategory:   classify.CategoryChat,
			wantConfidence: 0.50,
		},
		{
			name:           "rule 1 beats rule 2 on long task lists",
			text:           "todo for the week:\n- buy milk\n- call dentist\n- finish the report draft and send it out for review\n- book flights for the conference in March",
			wantCategory:   classify.CategoryBrainDump,
			wantConfidence: 0.70,
		},
		{
			name:           "rule 2 beats rule 3 when both keywords present",
			text:           "note: I need to call the dentist",
			wantCategory:   classify.CategoryTask,
			wantConfidence: 0.65,
		},
		{
			name:           "short message with separators is not a brain dump",
			text:           "milk; eggs",
			wantCategory:   classify.CategoryChat,
			wantConfidence: 0.50,
		},
		{
			name:           "keyword matching is case insensitive",
			text:           "TODO buy milk",
			wantCategory:   classify.CategoryTask,
			wantConfidence: 0.65,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classify.FallbackClassify(tt.text, testFallbackConfig(), 100)

			if result.Category != tt.wantCategory {
				t.Errorf("category = %s, want %s", result.Category, tt.wantCategory)
			}
			if result.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", result.Confidence, tt.wantConfidence)
			}
			if result.Source != classify.SourceFallback {
				t.Errorf("source = %s, want %s", result.Source, classify.SourceFallback)
			}
			if result.Reasoning == "" {
				t.Error("reasoning must name the rule that fired")
			}
		})
	}
}

func TestFallbackClassify_Deterministic(t *testing.T) {
	text := "todo finish the quarterly report"
	first := classify.FallbackClassify(text, testFallbackConfig(), 100)
	for i := 0; i < 10; i++ {
		got := classify.FallbackClassify(text, testFallbackConfig(), 100)
		if got != first {
			t.Fatalf("run %d: result %+v differs from first %+v", i, got, first)
		}
	}
}

func TestFallbackClassify_ThresholdBoundary(t *testing.T) {
	// Exactly at the threshold the length test fails; one past it fires.
	base := strings.Repeat("a", 98) + ";"
	at := base + "b"   // len 100
	over := base + "bc" // len 101

	if got := classify.FallbackClassify(at, testFallbackConfig(), 100); got.Category == classify.CategoryBrainDump {
		t.Errorf("length %d should not trigger rule 1", len(at))
	}
	if got := classify.FallbackClassify(over, testFallbackConfig(), 100); got.Category != classify.CategoryBrainDump {
		t.Errorf("length %d should trigger rule 1, got %s", len(over), got.Category)
	}
}
