package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Brokers: []string{"localhost:9092"}}
	cfg.applyDefaults()

	assert.Equal(t, TopicSearchCompleted, cfg.Topic)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
}

func TestSearchCompletedJSON(t *testing.T) {
	event := SearchCompleted{
		RequestID:       "req-1",
		Query:           "transformers",
		EnhancedQuery:   "transformer attention mechanisms",
		SourcesUsed:     []string{"arxiv", "pubmed"},
		PerSourceCounts: map[string]int{"arxiv": 7, "pubmed": 3},
		Total:           10,
		DurationMS:      412,
		OccurredAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "req-1", decoded["request_id"])
	assert.Equal(t, "transformer attention mechanisms", decoded["enhanced_query"])
	assert.Equal(t, float64(10), decoded["total"])
	assert.Equal(t, float64(412), decoded["duration_ms"])
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishSearchCompleted(context.Background(), SearchCompleted{}))
	assert.NoError(t, p.Close())
}
