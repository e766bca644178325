// Package catalog holds the canned analytics scenarios the assistant can answer.
package catalog

import "fmt"

// ActionID identifies one canned scenario.
type ActionID string

const (
	ActionAvgRating      ActionID = "avg-rating"
	ActionRecentFeedback ActionID = "recent-feedback"
	ActionSentimentDist  ActionID = "sentiment-dist"
	ActionFeedbackChart  ActionID = "feedback-chart"
)

// Tool names used by the simulated tool invocations.
const (
	ToolGetAverageRating         = "get_average_rating"
	ToolGetRecentFeedback        = "get_recent_feedback"
	ToolGetSentimentDistribution = "get_sentiment_distribution"
	ToolGetFeedbackTrends        = "get_feedback_trends"
)

var ids = []ActionID{
	ActionAvgRating,
	ActionRecentFeedback,
	ActionSentimentDist,
	ActionFeedbackChart,
}

// IDs returns every known action identifier in display order.
func IDs() []ActionID {
	out := make([]ActionID, len(ids))
	copy(out, ids)
	return out
}

// Valid reports whether id belongs to the closed set.
func (id ActionID) Valid() bool {
	for _, known := range ids {
		if id == known {
			return true
		}
	}
	return false
}

// ToolInvocation describes a simulated tool call.
type ToolInvocation struct {
	ToolName string
	Args     map[string]any
	Result   any
}

// Template is the static response bound to an action.
type Template struct {
	Text           string
	ToolInvocation *ToolInvocation
	FollowUp       string
}

// Lookup returns the response template for id.
func Lookup(id ActionID) (*Template, bool) {
	t, ok := templates[id]
	return t, ok
}

var templates = map[ActionID]*Template{
	ActionAvgRating: {
		Text: "Let me analyze the average rating from our feedback data.",
		ToolInvocation: &ToolInvocation{
			ToolName: ToolGetAverageRating,
			Args:     map[string]any{"timeframe": "last_30_days"},
			Result: map[string]any{
				"average":       4.2,
				"total_reviews": 1250,
				"breakdown": map[string]int{
					"5": 520,
					"4": 380,
					"3": 200,
					"2": 100,
					"1": 50,
				},
			},
		},
		FollowUp: "Based on the analysis, the average rating is 4.2 stars from 1,250 reviews in the last 30 days.",
	},
	ActionRecentFeedback: {
		Text: "Fetching the most recent customer feedback...",
		ToolInvocation: &ToolInvocation{
			ToolName: ToolGetRecentFeedback,
			Args:     map[string]any{"limit": 5, "sort": "timestamp_desc"},
			Result: map[string]any{
				"feedback":    RecentFeedback(3),
				"total_count": len(mockFeedback),
			},
		},
		FollowUp: fmt.Sprintf("Here are the %d most recent feedback entries from our customers.", len(mockFeedback)),
	},
	ActionSentimentDist: {
		Text: "Analyzing sentiment distribution across all feedback...",
		ToolInvocation: &ToolInvocation{
			ToolName: ToolGetSentimentDistribution,
			Args:     map[string]any{"timeframe": "last_30_days"},
			Result: map[string]any{
				"positive":       65,
				"neutral":        20,
				"negative":       15,
				"total_analyzed": 1250,
			},
		},
		FollowUp: "The sentiment analysis shows 65% positive, 20% neutral, and 15% negative feedback.",
	},
	ActionFeedbackChart: {
		Text: "Generating feedback trends chart...",
		ToolInvocation: &ToolInvocation{
			ToolName: ToolGetFeedbackTrends,
			Args:     map[string]any{"timeframe": "last_3_months", "granularity": "weekly"},
			Result: map[string]any{
				"chart_data": []TrendPoint{
					{Week: "2024-W40", AvgRating: 3.8, Count: 42},
					{Week: "2024-W41", AvgRating: 3.9, Count: 48},
					{Week: "2024-W42", AvgRating: 4.1, Count: 55},
					{Week: "2024-W43", AvgRating: 4.0, Count: 51},
					{Week: "2024-W44", AvgRating: 4.2, Count: 63},
					{Week: "2024-W45", AvgRating: 4.3, Count: 58},
					{Week: "2024-W46", AvgRating: 4.1, Count: 49},
					{Week: "2024-W47", AvgRating: 4.4, Count: 67},
					{Week: "2024-W48", AvgRating: 4.2, Count: 61},
					{Week: "2024-W49", AvgRating: 4.5, Count: 72},
					{Week: "2024-W50", AvgRating: 4.3, Count: 59},
					{Week: "2024-W51", AvgRating: 4.4, Count: 68},
				},
				"trend": "improving",
			},
		},
		FollowUp: "The feedback trends show an improving pattern over the last 3 months, with ratings climbing from 3.8 to 4.4 stars.",
	},
}

// TrendPoint is one weekly sample of the feedback trend series.
type TrendPoint struct {
	Week      string  `json:"week"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}
