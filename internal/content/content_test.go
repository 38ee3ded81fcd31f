package content

import (
	"errors"
	"testing"

	"educraft-session-service/internal/domain"
)

func TestFingerprintIgnoresOptionOrderAndSpacing(t *testing.T) {
	a := domain.Question{Question: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}}
	b := domain.Question{Question: "  what is 2  + 2? ", Options: []string{"6", "5", "4", "3"}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected identical fingerprints for equivalent questions")
	}

	c := domain.Question{Question: "What is 2 + 3?", Options: []string{"3", "4", "5", "6"}}
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatalf("expected different fingerprint when text changes")
	}
	d := domain.Question{Question: "What is 2 + 2?", Options: []string{"3", "4", "5", "7"}}
	if Fingerprint(a) == Fingerprint(d) {
		t.Fatalf("expected different fingerprint when an option changes")
	}
}

func TestFingerprintDoesNotMergeAdjacentOptions(t *testing.T) {
	a := domain.Question{Question: "q", Options: []string{"ab", "c", "d", "e"}}
	b := domain.Question{Question: "q", Options: []string{"a", "bc", "d", "e"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("options must be delimited in the digest")
	}
}

func TestFallbackQuestionLookup(t *testing.T) {
	q := FallbackQuestion("Science", "easy")
	if q.Question != "What gas do plants absorb from the air?" || q.CorrectIndex != 2 {
		t.Fatalf("unexpected science/easy fallback: %+v", q)
	}

	def := FallbackQuestion("Astrology", "impossible")
	if def.Question != "What is 24 ÷ 4?" {
		t.Fatalf("expected Math/medium default, got %+v", def)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("fallback must be well formed: %v", err)
	}

	def.Options[0] = "mutated"
	if FallbackQuestion("Math", "medium").Options[0] != "4" {
		t.Fatalf("fallback table must not be mutated through returned values")
	}
}

func TestFallbackWorldDefaultsToMath(t *testing.T) {
	if w := FallbackWorld("English"); w.WorldName != "Storybook Library" {
		t.Fatalf("unexpected english world: %+v", w)
	}
	if w := FallbackWorld("Music"); w.WorldName != "Crystal Peaks" {
		t.Fatalf("expected math world for unknown subject, got %+v", w)
	}
}

func TestParseQuestion(t *testing.T) {
	out := "Sure! ```json\n{\"question\":\"Q?\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correct_index\":3,\"explanation\":\"e\"}\n```"
	q, err := ParseQuestion(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.CorrectIndex != 3 || len(q.Options) != 4 {
		t.Fatalf("unexpected question %+v", q)
	}

	bad := []string{
		"no json here",
		`{"question":"Q?","options":["a","b","c"],"correct_index":0}`,
		`{"question":"Q?","options":["a","b","c","d"]}`,
		`{"question":"Q?","options":["a","b","c","d"],"correct_index":4}`,
		`{"question":"","options":["a","b","c","d"],"correct_index":1}`,
		`{"question": oops}`,
	}
	for _, in := range bad {
		if _, err := ParseQuestion(in); !errors.Is(err, domain.ErrMalformedContent) {
			t.Fatalf("expected malformed error for %q, got %v", in, err)
		}
	}
}
