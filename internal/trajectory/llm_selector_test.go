package trajectory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intentdrift/internal/goalgraph"
	"github.com/abhisek/intentdrift/internal/llm"
)

func twoRootGraph() *goalgraph.Graph {
	g := goalgraph.New()
	g.AddGoal("book_flight", nil, goalgraph.Unbounded())
	g.AddGoal("research", nil, goalgraph.NewWindow(1, 2))
	g.AddGoal("book_hotel", []string{"book_flight"}, goalgraph.NewWindow(2, 4))
	return g
}

func TestLLMSelector_UsesModelChoice(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"goal":"research","reasoning":"reading reviews is research"}`),
	})
	s := NewLLMSelector(mock, DefaultLLMSelectorConfig(), zerolog.Nop())

	goal, ok, err := s.Select(context.Background(), twoRootGraph(), Action{T: 1, Text: "read destination reviews"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "research", goal)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, GoalSelectionSchema, req.Schema)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Step 1: read destination reviews")
	assert.Contains(t, msg, "- research (expected during steps [1, 2])")
	assert.NotContains(t, msg, "book_hotel")
}

func TestLLMSelector_SingleCandidateSkipsModel(t *testing.T) {
	mock := llm.NewMockProvider()
	s := NewLLMSelector(mock, DefaultLLMSelectorConfig(), zerolog.Nop())

	goal, ok, err := s.Select(context.Background(), travelGraph(), Action{T: 1, Text: "x"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "book_flight", goal)
	assert.Zero(t, mock.CallCount())
}

func TestLLMSelector_FallsBackOnIneligibleGoal(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"goal":"book_hotel","reasoning":"hotel"}`),
	})
	s := NewLLMSelector(mock, DefaultLLMSelectorConfig(), zerolog.Nop())

	goal, ok, err := s.Select(context.Background(), twoRootGraph(), Action{T: 1, Text: "book hotel"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "book_flight", goal)
}

// rawProvider returns content without schema validation.
type rawProvider struct {
	content string
}

func (p rawProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: json.RawMessage(p.content)}, nil
}

func (rawProvider) ModelID() string { return "raw" }

func TestLLMSelector_LogsUnparseableResponse(t *testing.T) {
	var logs strings.Builder
	s := NewLLMSelector(rawProvider{content: `{"goal":`}, DefaultLLMSelectorConfig(), zerolog.New(&logs))

	goal, ok, err := s.Select(context.Background(), twoRootGraph(), Action{T: 1, Text: "x"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "book_flight", goal)

	assert.Contains(t, logs.String(), "unparseable goal selection")
	assert.Contains(t, logs.String(), `"error":`)
	assert.NotContains(t, logs.String(), "ineligible")
}

func TestLLMSelector_FallsBackOnProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	s := NewLLMSelector(mock, DefaultLLMSelectorConfig(), zerolog.Nop()).WithFallback(NextPending{})

	completed := goalgraph.NewSet("book_flight")
	goal, ok, err := s.Select(context.Background(), twoRootGraph(), Action{T: 2, Text: "x"}, completed)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "research", goal)
}

func TestLLMSelector_MarksCompletedCandidates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"goal":"book_hotel","reasoning":"hotel"}`),
	})
	s := NewLLMSelector(mock, DefaultLLMSelectorConfig(), zerolog.Nop())

	completed := goalgraph.NewSet("book_flight")
	goal, _, err := s.Select(context.Background(), twoRootGraph(), Action{T: 3, Text: "book hotel"}, completed)
	require.NoError(t, err)
	assert.Equal(t, "book_hotel", goal)

	msg := mock.Calls[0].Messages[0].Content
	assert.True(t, strings.Contains(msg, "- book_flight [completed]"), msg)
	assert.Equal(t, "llm", s.Name())
}
