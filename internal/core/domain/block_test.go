package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBlockType_IsContainer tests container classification
func TestBlockType_IsContainer(t *testing.T) {
	containers := []BlockType{BlockTypeChapter, BlockTypeSequential, BlockTypeVertical}
	leaves := []BlockType{BlockTypeVideo, BlockTypeProblem, BlockTypeHTML, BlockTypeDiscussion, BlockTypeOther}

	for _, bt := range containers {
		assert.True(t, bt.IsContainer(), "%s should be a container", bt)
		assert.False(t, bt.IsLeaf(), "%s should not be a leaf", bt)
	}
	for _, bt := range leaves {
		assert.False(t, bt.IsContainer(), "%s should not be a container", bt)
		assert.True(t, bt.IsLeaf(), "%s should be a leaf", bt)
	}
}

// TestBlockType_IsValid tests type validation
func TestBlockType_IsValid(t *testing.T) {
	assert.True(t, BlockTypeChapter.IsValid())
	assert.True(t, BlockTypeVideo.IsValid())
	assert.False(t, BlockType("drag-and-drop-v2").IsValid())
	assert.False(t, BlockType("").IsValid())
}

// TestParseBlockType tests mapping of LMS type strings
func TestParseBlockType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  BlockType
	}{
		{"chapter", "chapter", BlockTypeChapter},
		{"sequential", "sequential", BlockTypeSequential},
		{"vertical", "vertical", BlockTypeVertical},
		{"video", "video", BlockTypeVideo},
		{"custom xblock collapses to other", "drag-and-drop-v2", BlockTypeOther},
		{"empty collapses to other", "", BlockTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBlockType(tt.input))
		})
	}
}

// TestBlock_IsCompleted tests the completion fraction threshold
func TestBlock_IsCompleted(t *testing.T) {
	assert.True(t, (&Block{Completion: 1.0}).IsCompleted())
	assert.False(t, (&Block{Completion: 0.999}).IsCompleted())
	assert.False(t, (&Block{Completion: 0}).IsCompleted())
}

// TestBlock_IsDownloadable tests downloadability
func TestBlock_IsDownloadable(t *testing.T) {
	assert.True(t, (&Block{DownloadURL: "https://cdn.example.com/v.mp4"}).IsDownloadable())
	assert.False(t, (&Block{}).IsDownloadable())
}

// TestBlock_HasDescendant tests direct child membership
func TestBlock_HasDescendant(t *testing.T) {
	b := &Block{Descendants: []string{"a", "b", "c"}}

	assert.True(t, b.HasDescendant("b"))
	assert.False(t, b.HasDescendant("d"))
	assert.False(t, (&Block{}).HasDescendant("a"))
}

// TestBlockType_Description tests display names
func TestBlockType_Description(t *testing.T) {
	assert.Equal(t, "Section", BlockTypeSequential.Description())
	assert.Equal(t, "Unit", BlockTypeVertical.Description())
	assert.Equal(t, "Content", BlockTypeOther.Description())
}
