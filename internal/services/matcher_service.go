package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/pulsefit/reconciler/internal/models"
)

// MatchOutcome tags the result of one cascade stage or of the whole cascade.
type MatchOutcome int

const (
	// OutcomeNoMatch means the stage found nothing; the cascade continues.
	OutcomeNoMatch MatchOutcome = iota
	// OutcomeMatched carries a single confident library target.
	OutcomeMatched
	// OutcomeAmbiguous means several candidates tied; the stage yields
	// nothing and the cascade continues.
	OutcomeAmbiguous
)

type MatchResult struct {
	Outcome     MatchOutcome
	LibraryID   int64
	LibraryName string
}

type libraryReader interface {
	ListRichLibrary(ctx context.Context) ([]models.Exercise, error)
}

// MatcherService resolves an orphan exercise name to at most one curated
// library entry. Stages run in strict order and the first confident result
// wins; ambiguity at a stage is never resolved by ranking.
type MatcherService struct {
	exerciseRepo libraryReader
}

func NewMatcherService(exerciseRepo libraryReader) *MatcherService {
	return &MatcherService{exerciseRepo: exerciseRepo}
}

var trailingParenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// Equipment qualifiers and filler words that carry no signal about which
// movement an exercise name describes.
var keywordStopWords = map[string]bool{
	"the": true, "and": true, "with": true, "for": true,
	"barbell": true, "dumbbell": true, "cable": true, "machine": true,
	"seated": true, "standing": true, "incline": true, "decline": true,
	"smith": true, "band": true, "kettlebell": true,
}

// FindMatch runs the cascade for one orphan. selfID is excluded from the
// candidate set so an entry can never match itself.
func (s *MatcherService) FindMatch(
	ctx context.Context,
	selfID int64,
	name string,
) (*MatchResult, error) {
	normalized := NormalizeExerciseName(name)
	if normalized == "" {
		return &MatchResult{Outcome: OutcomeNoMatch}, nil
	}

	library, err := s.exerciseRepo.ListRichLibrary(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.Exercise, 0, len(library))
	for _, entry := range library {
		if entry.ID != selfID {
			candidates = append(candidates, entry)
		}
	}

	stages := []func(string, []models.Exercise) MatchResult{
		exactStage,
		partialStage,
		synonymStage,
		keywordStage,
	}
	for _, stage := range stages {
		if result := stage(normalized, candidates); result.Outcome == OutcomeMatched {
			return &result, nil
		}
	}

	return &MatchResult{Outcome: OutcomeNoMatch}, nil
}

// NormalizeExerciseName strips one trailing parenthetical qualifier, e.g.
// "Bench Press (band)" becomes "Bench Press", and trims whitespace.
func NormalizeExerciseName(name string) string {
	return strings.TrimSpace(trailingParenthetical.ReplaceAllString(name, ""))
}

func exactStage(normalized string, library []models.Exercise) MatchResult {
	for _, entry := range library {
		if strings.EqualFold(entry.Name, normalized) {
			return MatchResult{Outcome: OutcomeMatched, LibraryID: entry.ID, LibraryName: entry.Name}
		}
	}
	return MatchResult{Outcome: OutcomeNoMatch}
}

func partialStage(normalized string, library []models.Exercise) MatchResult {
	lowered := strings.ToLower(normalized)
	var found []models.Exercise
	for _, entry := range library {
		entryName := strings.ToLower(entry.Name)
		if strings.Contains(lowered, entryName) || strings.Contains(entryName, lowered) {
			found = append(found, entry)
		}
	}
	switch len(found) {
	case 0:
		return MatchResult{Outcome: OutcomeNoMatch}
	case 1:
		return MatchResult{Outcome: OutcomeMatched, LibraryID: found[0].ID, LibraryName: found[0].Name}
	default:
		return MatchResult{Outcome: OutcomeAmbiguous}
	}
}

func synonymStage(normalized string, library []models.Exercise) MatchResult {
	for _, entry := range library {
		for _, synonym := range entry.Synonyms {
			if strings.EqualFold(synonym, normalized) {
				return MatchResult{Outcome: OutcomeMatched, LibraryID: entry.ID, LibraryName: entry.Name}
			}
		}
	}
	return MatchResult{Outcome: OutcomeNoMatch}
}

func keywordStage(normalized string, library []models.Exercise) MatchResult {
	keywords := extractKeywords(normalized)
	if len(keywords) == 0 {
		return MatchResult{Outcome: OutcomeNoMatch}
	}

	var found []models.Exercise
	for _, entry := range library {
		entryName := strings.ToLower(entry.Name)
		all := true
		for _, keyword := range keywords {
			if !strings.Contains(entryName, keyword) {
				all = false
				break
			}
		}
		if all {
			found = append(found, entry)
		}
	}

	if len(found) == 1 {
		return MatchResult{Outcome: OutcomeMatched, LibraryID: found[0].ID, LibraryName: found[0].Name}
	}
	if len(found) > 1 {
		return MatchResult{Outcome: OutcomeAmbiguous}
	}
	return MatchResult{Outcome: OutcomeNoMatch}
}

func extractKeywords(normalized string) []string {
	var keywords []string
	for _, token := range strings.Fields(strings.ToLower(normalized)) {
		var letters strings.Builder
		for _, r := range token {
			if r >= 'a' && r <= 'z' {
				letters.WriteRune(r)
			}
		}
		word := letters.String()
		if len(word) < 3 || keywordStopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
