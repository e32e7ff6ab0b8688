package domain

import "strings"

// BasicEmotions are the labels the backend's face analysis can assign.
var BasicEmotions = []string{"happy", "sad", "angry", "surprise", "fear", "disgust", "neutral"}

// ComplexEmotions maps blended emotions to the basic labels that satisfy them.
var ComplexEmotions = map[string][]string{
	"goofy":        {"happy", "surprise", "neutral"},
	"silly":        {"happy", "surprise"},
	"melancholy":   {"sad", "neutral"},
	"nostalgia":    {"surprise", "neutral", "happy", "sad"},
	"bittersweet":  {"happy", "sad", "neutral"},
	"anxious":      {"fear", "surprise", "neutral"},
	"content":      {"happy", "neutral"},
	"hopeful":      {"happy", "surprise"},
	"serene":       {"neutral", "happy"},
	"guilty":       {"sad", "fear", "disgust"},
	"ashamed":      {"sad", "disgust", "neutral"},
	"proud":        {"happy", "neutral", "surprise"},
	"affectionate": {"happy", "neutral"},
	"lonely":       {"sad", "neutral"},
	"conflicted":   {"neutral", "sad", "happy"},
	"frustrated":   {"angry", "sad", "neutral"},
	"resentful":    {"angry", "disgust"},
	"startled":     {"surprise", "fear"},
	"relieved":     {"happy", "neutral", "sad"},
	"overwhelmed":  {"fear", "surprise", "sad"},
	"awkward":      {"neutral", "fear", "surprise"},
	"disappointed": {"sad", "neutral"},
	"inspired":     {"happy", "surprise", "neutral"},
	"peaceful":     {"happy", "neutral", "sad"},
	"curious":      {"surprise", "neutral", "happy"},
	"bored":        {"neutral", "sad"},
	"playful":      {"happy", "surprise"},
	"grateful":     {"happy", "neutral"},
	"embarrassed":  {"sad", "surprise", "disgust"},
	"determined":   {"angry", "neutral", "happy"},
}

// EmotionSynonyms normalizes everyday words to a known emotion.
var EmotionSynonyms = map[string]string{
	"funny":      "goofy",
	"joyful":     "happy",
	"scared":     "fear",
	"gross":      "disgust",
	"mad":        "angry",
	"serious":    "neutral",
	"loneliness": "lonely",
	"hope":       "hopeful",
	"peace":      "peaceful",
}

// InferEmotion picks the first emotion word in a query, or "" when the query
// names none. It is a local guess used to prefill feedback when the backend
// did not report an emotion.
func InferEmotion(query string) string {
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if syn, ok := EmotionSynonyms[word]; ok {
			word = syn
		}
		if _, ok := ComplexEmotions[word]; ok {
			return word
		}
		for _, basic := range BasicEmotions {
			if word == basic {
				return word
			}
		}
	}
	return ""
}

// Satisfies reports whether a detected label meets an expected emotion,
// counting blended emotions as met by any of their basic components.
func Satisfies(expected, detected string) bool {
	if expected == detected {
		return true
	}
	for _, allowed := range ComplexEmotions[expected] {
		if allowed == detected {
			return true
		}
	}
	return false
}
