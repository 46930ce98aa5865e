package scoring

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+(?:'[a-z]+)?`)

// stopWords are articles, pronouns, and generic clinical filler that carry no
// discriminating signal when comparing free text against reference answers.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "to": {},
	"in": {}, "on": {}, "for": {}, "with": {}, "as": {}, "at": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "be": {}, "has": {}, "have": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"his": {}, "her": {}, "their": {}, "your": {}, "my": {}, "this": {},
	"that": {}, "these": {}, "those": {},
	"patient": {}, "patients": {}, "client": {}, "clients": {},
	"nurse": {}, "nursing": {}, "care": {}, "will": {}, "should": {},
}

// Tokenize lower-cases text, strips punctuation, splits on word boundaries,
// and drops stop words. The result is a set, so duplicate words collapse.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopWords[word]; skip {
			continue
		}
		tokens[word] = struct{}{}
	}
	return tokens
}

// OverlapRatio returns |tokens(candidate) ∩ tokens(reference)| / |tokens(reference)|
// in [0, 1]. Either side tokenizing to empty yields 0, never an error.
func OverlapRatio(candidate, reference string) float64 {
	candTokens := Tokenize(candidate)
	refTokens := Tokenize(reference)
	if len(candTokens) == 0 || len(refTokens) == 0 {
		return 0
	}

	matched := 0
	for token := range refTokens {
		if _, ok := candTokens[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(refTokens))
}
