package catalog

// Complexity is a rough difficulty label shown next to each action.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityMedium   Complexity = "medium"
	ComplexityAdvanced Complexity = "advanced"
)

// Action pairs an action identifier with the button label and the
// query text the client sends as the user message.
type Action struct {
	ID         ActionID   `json:"id"`
	Label      string     `json:"label"`
	Query      string     `json:"query"`
	Complexity Complexity `json:"complexity"`
}

var actions = []Action{
	{ID: ActionAvgRating, Label: "Average Rating", Query: "What's the average rating?", Complexity: ComplexitySimple},
	{ID: ActionRecentFeedback, Label: "Latest Feedback", Query: "Show me the latest feedback", Complexity: ComplexitySimple},
	{ID: ActionSentimentDist, Label: "Sentiment Analysis", Query: "Show sentiment distribution", Complexity: ComplexityMedium},
	{ID: ActionFeedbackChart, Label: "Feedback Trends", Query: "Show feedback trends over time", Complexity: ComplexityAdvanced},
}

// Actions returns the predefined actions in display order.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// FindAction returns the predefined action for id.
func FindAction(id ActionID) (Action, bool) {
	for _, a := range actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}
