package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/insights-agent/pkg/anthropic"
)

func TestCleanJSONPlainObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON(`{"a":1}`))
}

func TestCleanJSONStripsFences(t *testing.T) {
	in := "```json\n{\"metrics\": [\"sessions\"]}\n```"
	assert.Equal(t, `{"metrics": ["sessions"]}`, cleanJSON(in))
}

func TestCleanJSONStripsBareFences(t *testing.T) {
	in := "```\n[{\"agent\": \"seo\"}]\n```"
	assert.Equal(t, `[{"agent": "seo"}]`, cleanJSON(in))
}

func TestCleanJSONExtractsFromProse(t *testing.T) {
	in := "Here is the result:\n{\"limit\": 10}\nHope that helps!"
	assert.Equal(t, `{"limit": 10}`, cleanJSON(in))
}

func TestCleanJSONPrefersEarlierArray(t *testing.T) {
	in := `[{"agent": "analytics"}] with a trailing note`
	assert.Equal(t, `[{"agent": "analytics"}]`, cleanJSON(in))
}

func TestExtractTextJoinsBlocks(t *testing.T) {
	resp := &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: "first"},
			{Type: "text", Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", extractText(resp))
}

func TestExtractTextNil(t *testing.T) {
	assert.Empty(t, extractText(nil))
}
