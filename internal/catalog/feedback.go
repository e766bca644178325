package catalog

import "time"

// Sentiment classifies a feedback entry.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Feedback is a single mock customer feedback entry.
type Feedback struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Sentiment Sentiment `json:"sentiment"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

var mockFeedback = []Feedback{
	{
		ID:        "1",
		Rating:    4,
		Sentiment: SentimentPositive,
		Text:      "Great product! Really love the new features.",
		Category:  "product",
		Timestamp: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	},
	{
		ID:        "2",
		Rating:    2,
		Sentiment: SentimentNegative,
		Text:      "App crashes frequently, very frustrating.",
		Category:  "technical",
		Timestamp: time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC),
	},
	{
		ID:        "3",
		Rating:    3,
		Sentiment: SentimentNeutral,
		Text:      "It's okay, could be better.",
		Category:  "general",
		Timestamp: time.Date(2024, time.January, 13, 0, 0, 0, 0, time.UTC),
	},
	{
		ID:        "4",
		Rating:    5,
		Sentiment: SentimentPositive,
		Text:      "Excellent customer service!",
		Category:  "support",
		Timestamp: time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC),
	},
}

// MockFeedback returns a copy of the full mock feedback set, newest first.
func MockFeedback() []Feedback {
	out := make([]Feedback, len(mockFeedback))
	copy(out, mockFeedback)
	return out
}

// RecentFeedback returns the first n entries of the mock set.
func RecentFeedback(n int) []Feedback {
	if n > len(mockFeedback) {
		n = len(mockFeedback)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Feedback, n)
	copy(out, mockFeedback[:n])
	return out
}
