package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_EveryActionHasTemplate(t *testing.T) {
	for _, id := range IDs() {
		tmpl, ok := Lookup(id)
		require.True(t, ok, id)
		assert.NotEmpty(t, tmpl.Text, id)
		require.NotNil(t, tmpl.ToolInvocation, id)
		assert.NotEmpty(t, tmpl.ToolInvocation.ToolName, id)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup("make-coffee")
	assert.False(t, ok)
}

func TestActionID_Valid(t *testing.T) {
	assert.True(t, ActionAvgRating.Valid())
	assert.True(t, ActionFeedbackChart.Valid())
	assert.False(t, ActionID("").Valid())
	assert.False(t, ActionID("AVG-RATING").Valid())
}

func TestIDs_ReturnsCopy(t *testing.T) {
	got := IDs()
	require.Len(t, got, 4)
	got[0] = "mutated"
	assert.Equal(t, ActionAvgRating, IDs()[0])
}

func TestTemplates_ToolNames(t *testing.T) {
	want := map[ActionID]string{
		ActionAvgRating:      ToolGetAverageRating,
		ActionRecentFeedback: ToolGetRecentFeedback,
		ActionSentimentDist:  ToolGetSentimentDistribution,
		ActionFeedbackChart:  ToolGetFeedbackTrends,
	}
	for id, tool := range want {
		tmpl, _ := Lookup(id)
		assert.Equal(t, tool, tmpl.ToolInvocation.ToolName, id)
	}
}

func TestRecentFeedbackTemplate(t *testing.T) {
	tmpl, _ := Lookup(ActionRecentFeedback)
	result, ok := tmpl.ToolInvocation.Result.(map[string]any)
	require.True(t, ok)

	feedback, ok := result["feedback"].([]Feedback)
	require.True(t, ok)
	assert.Equal(t, MockFeedback()[:3], feedback)
	assert.Equal(t, 4, result["total_count"])
	assert.True(t, strings.HasPrefix(tmpl.FollowUp, "Here are the 4 most recent"))
}

func TestRecentFeedback_Bounds(t *testing.T) {
	assert.Len(t, RecentFeedback(0), 0)
	assert.Len(t, RecentFeedback(-1), 0)
	assert.Len(t, RecentFeedback(2), 2)
	assert.Len(t, RecentFeedback(99), 4)
	assert.Equal(t, "1", RecentFeedback(1)[0].ID)
}

func TestActions(t *testing.T) {
	actions := Actions()
	require.Len(t, actions, len(IDs()))
	for i, id := range IDs() {
		assert.Equal(t, id, actions[i].ID)
		assert.NotEmpty(t, actions[i].Label)
		assert.NotEmpty(t, actions[i].Query)
	}

	a, ok := FindAction(ActionSentimentDist)
	require.True(t, ok)
	assert.Equal(t, "Show sentiment distribution", a.Query)
	assert.Equal(t, ComplexityMedium, a.Complexity)

	_, ok = FindAction("nope")
	assert.False(t, ok)
}
