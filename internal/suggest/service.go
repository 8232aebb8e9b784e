package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/webseeker/server/internal/cache"
	"github.com/webseeker/server/internal/model"
)

const (
	cacheTTL = 1 * time.Hour
	// CacheTag groups all suggestion entries for bulk invalidation.
	CacheTag = "similar-questions"

	// maxSourceContent bounds how much of a source body goes into the prompt.
	maxSourceContent = 10_000
)

const promptTemplate = `
You are an expert assistant who creates related follow-up questions based on a user's original question and the provided search results.

Your task is to generate 3 relevant follow-up questions.

Follow these rules strictly:
1.  Each question must be no longer than 20 words.
2.  Include specific names, locations, or events from the context so the questions can be understood on their own. For example, use "the Manhattan project" instead of "the project".
3.  The questions must be in the same language as the original question.
4.  Do NOT repeat the original question.
5.  Your response MUST be only a valid JSON object with a single key "questions" that holds an array of 3 strings. Do not add any other text or markdown formatting around the JSON.

Original Question: %q

Search Results Context:
%s
`

// Generator is the slice of the language-model client this service needs
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Service produces follow-up questions for a query, memoizing results per
// distinct (question, sources) input for one hour.
type Service struct {
	generator Generator
	cache     cache.Store
}

// NewService creates a suggestion service
func NewService(generator Generator, store cache.Store) *Service {
	return &Service{generator: generator, cache: store}
}

// BuildSourcesContext renders sources as "Title: ...\nContent: ..." blocks
// separated by blank lines. Content is truncated to its first 10,000
// characters. No sources yields an empty string.
func BuildSourcesContext(sources []model.Source) string {
	if len(sources) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(sources))
	for _, src := range sources {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s...", src.Title, truncateRunes(src.Content, maxSourceContent)))
	}
	return strings.Join(blocks, "\n\n")
}

// Generate returns exactly the model's suggested questions for the input,
// serving repeats from cache within the TTL window. Unparseable or empty
// model output degrades to an empty slice (and is cached as such); only
// transport-level generator failures surface as errors.
func (s *Service) Generate(ctx context.Context, question string, sources []model.Source) ([]string, error) {
	sourcesContext := BuildSourcesContext(sources)
	key := cacheKey(question, sourcesContext)

	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	prompt := buildPrompt(question, sourcesContext)

	text, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	questions := parseQuestions(text)
	s.cache.Set(key, questions, cacheTTL, CacheTag)
	return questions, nil
}

// truncateRunes keeps the first max characters of s, cutting on rune
// boundaries so multibyte content never leaves invalid UTF-8 in the prompt.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// buildPrompt embeds the question and source context into the instruction prompt
func buildPrompt(question, sourcesContext string) string {
	if sourcesContext == "" {
		sourcesContext = "No search results provided."
	}
	return fmt.Sprintf(promptTemplate, question, sourcesContext)
}

// parseQuestions extracts the {"questions": [...]} contract from free-text
// model output, tolerating Markdown code fences around the JSON.
func parseQuestions(text string) []string {
	if strings.TrimSpace(text) == "" {
		log.Println("suggest: model response is empty")
		return []string{}
	}

	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		log.Printf("suggest: failed to parse model response: %v", err)
		return []string{}
	}
	if parsed.Questions == nil {
		return []string{}
	}
	return parsed.Questions
}

// cacheKey hashes the full input so arbitrarily large source contexts make
// fixed-size keys.
func cacheKey(question, sourcesContext string) string {
	h := sha256.Sum256([]byte(question + "\x00" + sourcesContext))
	return hex.EncodeToString(h[:])
}
