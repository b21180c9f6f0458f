package simplifier

import (
	"strings"
	"testing"
)

func TestSplitIntoSteps(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		sentencesPerStep int
		want             []string
	}{
		{
			name:             "empty text",
			text:             "",
			sentencesPerStep: 2,
			want:             nil,
		},
		{
			name:             "single sentence",
			text:             "The sun is a star.",
			sentencesPerStep: 2,
			want:             []string{"The sun is a star."},
		},
		{
			name:             "two sentences grouped into one step",
			text:             "The sun is a star. It gives us light.",
			sentencesPerStep: 2,
			want:             []string{"The sun is a star. It gives us light."},
		},
		{
			name:             "odd sentence left in shorter final step",
			text:             "One. Two. Three.",
			sentencesPerStep: 2,
			want:             []string{"One. Two.", "Three."},
		},
		{
			name:             "newlines treated as spaces",
			text:             "First line\ncontinues here. Second sentence.",
			sentencesPerStep: 1,
			want:             []string{"First line continues here.", "Second sentence."},
		},
		{
			name:             "zero group size falls back to one",
			text:             "One. Two.",
			sentencesPerStep: 0,
			want:             []string{"One.", "Two."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIntoSteps(tt.text, tt.sentencesPerStep)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitIntoSteps() returned %d steps, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("step %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNumberSteps(t *testing.T) {
	got := NumberSteps([]string{"First thing.", "Second thing."})
	want := "Step 1: First thing.\n\nStep 2: Second thing."
	if got != want {
		t.Errorf("NumberSteps() = %q, want %q", got, want)
	}

	if got := NumberSteps(nil); got != "" {
		t.Errorf("NumberSteps(nil) = %q, want empty", got)
	}
}

func TestLocalSimplify(t *testing.T) {
	got := LocalSimplify("One. Two. Three. Four. Five.")

	lines := strings.Split(got, "\n\n")
	if len(lines) != 3 {
		t.Fatalf("LocalSimplify() produced %d steps, want 3: %q", len(lines), got)
	}
	for i, line := range lines {
		prefix := "Step " + string(rune('1'+i)) + ": "
		if !strings.HasPrefix(line, prefix) {
			t.Errorf("step %d missing %q prefix: %q", i, prefix, line)
		}
	}
	if lines[2] != "Step 3: Five." {
		t.Errorf("final step = %q, want %q", lines[2], "Step 3: Five.")
	}
}
