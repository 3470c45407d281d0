package pillars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinitions_FullCredit(t *testing.T) {
	content := `<p>GEO is the practice of optimizing content so that AI assistants cite it accurately when answering questions about a topic.</p>
<p>Widgets are a kind of tool. A gizmo refers to a small gadget.</p>
<dl><dt>GEO</dt><dd>Generative engine optimization</dd></dl>`

	res := NewDefinitions().Score(context.Background(), content, nil)

	assert.Equal(t, 10.0, res.Score)
	assert.True(t, res.Evidence.Bool("first_paragraph_definition"))
	assert.Equal(t, 20, res.Evidence.Int("first_paragraph_word_count"))
	assert.Equal(t, 3, res.Evidence.Int("definition_sentence_count"))
}

func TestDefinitions_NoDefinition(t *testing.T) {
	res := NewDefinitions().Score(context.Background(), "<p>Welcome to our site, we hope you enjoy it here.</p>", nil)

	assert.False(t, res.Evidence.Bool("first_paragraph_definition"))
	// only the first paragraph length ladder (10 words, <=120) applies
	assert.Equal(t, 1.0, res.Score)
}

func TestDefinitions_Empty(t *testing.T) {
	res := NewDefinitions().Score(context.Background(), "", nil)
	assert.Equal(t, 0.0, res.Score)
	assert.False(t, res.Evidence.Bool("has_first_paragraph"))
}
