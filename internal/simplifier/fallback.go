package simplifier

import (
	"fmt"
	"strings"
)

// SplitIntoSteps breaks raw text into step-sized chunks without any remote
// call: sentences are split on ".", grouped sentencesPerStep at a time, and
// re-terminated with a period.
func SplitIntoSteps(text string, sentencesPerStep int) []string {
	if sentencesPerStep < 1 {
		sentencesPerStep = 1
	}

	var sentences []string
	for _, s := range strings.Split(strings.ReplaceAll(text, "\n", " "), ".") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	var steps []string
	for i := 0; i < len(sentences); i += sentencesPerStep {
		end := i + sentencesPerStep
		if end > len(sentences) {
			end = len(sentences)
		}
		part := strings.TrimSpace(strings.Join(sentences[i:end], ". "))
		if part == "" {
			continue
		}
		if !strings.HasSuffix(part, ".") {
			part += "."
		}
		steps = append(steps, part)
	}
	return steps
}

// NumberSteps renders steps as "Step N: ..." lines separated by blank lines,
// matching the format the remote simplifier produces
func NumberSteps(steps []string) string {
	numbered := make([]string, len(steps))
	for i, step := range steps {
		numbered[i] = fmt.Sprintf("Step %d: %s", i+1, step)
	}
	return strings.Join(numbered, "\n\n")
}

// LocalSimplify is the degraded path when remote generation is unavailable:
// two sentences per step, numbered
func LocalSimplify(text string) string {
	return NumberSteps(SplitIntoSteps(text, 2))
}
