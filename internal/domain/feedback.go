package domain

// FeedbackEvent is the body of POST /evaluate_result. It is sent once and never
// stored locally.
type FeedbackEvent struct {
	URL             string `json:"url"`
	ExpectedEmotion string `json:"expected_emotion"`
	MetExpectation  bool   `json:"met_expectation"`
}

// ValidateFeedback validates a FeedbackEvent instance
func ValidateFeedback(e FeedbackEvent) error {
	if e.URL == "" {
		return ErrEmptyImageURL
	}
	return nil
}
