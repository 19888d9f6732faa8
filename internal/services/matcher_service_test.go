package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pulsefit/reconciler/internal/models"
)

type stubLibraryReader struct {
	library []models.Exercise
	err     error
}

func (s *stubLibraryReader) ListRichLibrary(_ context.Context) ([]models.Exercise, error) {
	return s.library, s.err
}

func libraryEntry(id int64, name string, synonyms ...string) models.Exercise {
	imageURL := "https://cdn.example.com/" + name + ".png"
	return models.Exercise{
		ID:       id,
		Name:     name,
		IsCustom: false,
		ImageURL: &imageURL,
		Synonyms: synonyms,
	}
}

func TestNormalizeExerciseNameStripsTrailingParenthetical(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"DB Bench Press (band)", "DB Bench Press"},
		{"Squat", "Squat"},
		{"  Deadlift  ", "Deadlift"},
		{"Curl (EZ bar) ", "Curl"},
		{"(only parens)", ""},
	}
	for _, tc := range cases {
		if got := NormalizeExerciseName(tc.input); got != tc.want {
			t.Errorf("NormalizeExerciseName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFindMatchExactStage(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(1, "DB Bench Press"),
			libraryEntry(2, "Bench Press"),
		},
	})

	result, err := service.FindMatch(context.Background(), 99, "DB Bench Press (band)")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeMatched {
		t.Fatalf("expected a match, got outcome %d", result.Outcome)
	}
	if result.LibraryID != 1 || result.LibraryName != "DB Bench Press" {
		t.Fatalf("expected library entry 1, got %d (%s)", result.LibraryID, result.LibraryName)
	}
}

func TestFindMatchExactStageIsCaseInsensitive(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{libraryEntry(7, "Romanian Deadlift")},
	})

	result, err := service.FindMatch(context.Background(), 99, "romanian deadlift")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeMatched || result.LibraryID != 7 {
		t.Fatalf("expected match on entry 7, got %+v", result)
	}
}

func TestFindMatchExactBeatsPartialAndSynonym(t *testing.T) {
	// Entry 2 would satisfy the partial stage and entry 3 the synonym
	// stage, but the exact match on entry 1 must take precedence.
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(3, "Chest Press", "Bench Press"),
			libraryEntry(2, "Bench"),
			libraryEntry(1, "Bench Press"),
		},
	})

	result, err := service.FindMatch(context.Background(), 99, "Bench Press")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeMatched || result.LibraryID != 1 {
		t.Fatalf("expected exact match on entry 1, got %+v", result)
	}
}

func TestFindMatchPartialStageSingleCandidate(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(1, "Lat Pulldown"),
			libraryEntry(2, "Leg Press"),
		},
	})

	result, err := service.FindMatch(context.Background(), 99, "Wide Grip Lat Pulldown")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeMatched || result.LibraryID != 1 {
		t.Fatalf("expected partial match on entry 1, got %+v", result)
	}
}

func TestFindMatchPartialStageAmbiguityFallsThrough(t *testing.T) {
	// Both entries are substrings of the orphan name, so the partial stage
	// yields nothing; no later stage matches either.
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(1, "Press"),
			libraryEntry(2, "Leg Press"),
		},
	})

	result, err := service.FindMatch(context.Background(), 99, "Single Leg Press Variation Thing")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome == OutcomeMatched {
		t.Fatalf("expected no match on ambiguity, got entry %d", result.LibraryID)
	}
}

func TestFindMatchSynonymStage(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(1, "Romanian Deadlift", "RDL", "Stiff Leg Deadlift"),
			libraryEntry(2, "Conventional Deadlift"),
		},
	})

	result, err := service.FindMatch(context.Background(), 99, "RDL")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeMatched || result.LibraryID != 1 {
		t.Fatalf("expected synonym match on entry 1, got %+v", result)
	}
}

func TestFindMatchKeywordStage(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(1, "Bulgarian Split Squat"),
			libraryEntry(2, "Front Squat"),
		},
	})

	// Scrambled word order defeats the partial stage; only the keyword
	// stage can resolve this one.
	result, err := service.FindMatch(context.Background(), 99, "Bulgarian Squat Split Dumbbell")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeMatched || result.LibraryID != 1 {
		t.Fatalf("expected keyword match on entry 1, got %+v", result)
	}
}

func TestFindMatchKeywordStageEmptyKeywordsIsNoMatch(t *testing.T) {
	// Every token is either a stop word or shorter than three letters.
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{libraryEntry(1, "Bench Press")},
	})

	result, err := service.FindMatch(context.Background(), 99, "the db machine")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome == OutcomeMatched {
		t.Fatalf("expected no match, got entry %d", result.LibraryID)
	}
}

func TestFindMatchKeywordStageAmbiguityIsNoMatch(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{
			libraryEntry(1, "Cable Row Wide"),
			libraryEntry(2, "Cable Row Narrow"),
		},
	})

	// "standing" and "cable" are stop words, leaving the single keyword
	// "row", which both entries contain.
	result, err := service.FindMatch(context.Background(), 99, "Standing Cable Row")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome == OutcomeMatched {
		t.Fatalf("expected no match when multiple entries share all keywords, got entry %d", result.LibraryID)
	}
}

func TestFindMatchExcludesSelf(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{libraryEntry(5, "Bench Press")},
	})

	result, err := service.FindMatch(context.Background(), 5, "Bench Press")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome == OutcomeMatched {
		t.Fatal("expected no match when the only candidate is the orphan itself")
	}
}

func TestFindMatchNoStageMatches(t *testing.T) {
	service := NewMatcherService(&stubLibraryReader{
		library: []models.Exercise{libraryEntry(1, "Bench Press")},
	})

	result, err := service.FindMatch(context.Background(), 99, "Anti-Rotation Chop")
	if err != nil {
		t.Fatalf("FindMatch: %v", err)
	}
	if result.Outcome != OutcomeNoMatch {
		t.Fatalf("expected no match, got %+v", result)
	}
}

func TestFindMatchPropagatesRepoError(t *testing.T) {
	repoErr := errors.New("store unavailable")
	service := NewMatcherService(&stubLibraryReader{err: repoErr})

	_, err := service.FindMatch(context.Background(), 99, "Bench Press")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
