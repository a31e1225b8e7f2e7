package domain

// BlockType identifies the kind of content a block holds.
type BlockType string

// Known block types, as reported by the LMS blocks API.
const (
	// BlockTypeChapter is a top-level container in the course tree.
	BlockTypeChapter BlockType = "chapter"

	// BlockTypeSequential is a container directly under a chapter.
	// It is the unit of section view and of cross-boundary navigation stops.
	BlockTypeSequential BlockType = "sequential"

	// BlockTypeVertical is a container directly under a sequential,
	// grouping the leaf components shown together on one page.
	BlockTypeVertical BlockType = "vertical"

	// BlockTypeVideo is a video leaf.
	BlockTypeVideo BlockType = "video"

	// BlockTypeProblem is an interactive problem leaf.
	BlockTypeProblem BlockType = "problem"

	// BlockTypeHTML is a static HTML content leaf.
	BlockTypeHTML BlockType = "html"

	// BlockTypeDiscussion is an inline discussion leaf.
	BlockTypeDiscussion BlockType = "discussion"

	// BlockTypeOther is any leaf type the client does not recognise.
	BlockTypeOther BlockType = "other"
)

// IsValid returns true if the block type is recognised.
func (t BlockType) IsValid() bool {
	switch t {
	case BlockTypeChapter, BlockTypeSequential, BlockTypeVertical,
		BlockTypeVideo, BlockTypeProblem, BlockTypeHTML,
		BlockTypeDiscussion, BlockTypeOther:
		return true
	default:
		return false
	}
}

// IsContainer returns true for chapter, sequential and vertical blocks.
// Only containers carry descendants.
func (t BlockType) IsContainer() bool {
	switch t {
	case BlockTypeChapter, BlockTypeSequential, BlockTypeVertical:
		return true
	default:
		return false
	}
}

// IsLeaf returns true for non-container content blocks.
func (t BlockType) IsLeaf() bool {
	return !t.IsContainer()
}

// String returns the string representation.
func (t BlockType) String() string {
	return string(t)
}

// Description returns a human-readable description of the type.
func (t BlockType) Description() string {
	switch t {
	case BlockTypeChapter:
		return "Chapter"
	case BlockTypeSequential:
		return "Section"
	case BlockTypeVertical:
		return "Unit"
	case BlockTypeVideo:
		return "Video"
	case BlockTypeProblem:
		return "Problem"
	case BlockTypeHTML:
		return "Text"
	case BlockTypeDiscussion:
		return "Discussion"
	default:
		return "Content"
	}
}

// ParseBlockType maps an LMS type string onto a known BlockType.
// Unrecognised leaf types collapse to BlockTypeOther rather than failing,
// so a course using a custom XBlock still navigates.
func ParseBlockType(s string) BlockType {
	t := BlockType(s)
	if t.IsValid() {
		return t
	}
	return BlockTypeOther
}

// Block is one node in the course content graph.
//
// Blocks are constructed once per fetch or cache load and are immutable
// thereafter; a structure refresh replaces them wholesale. Child links are
// held as ids in Descendants rather than pointers, so the whole graph can be
// swapped atomically without back-reference upkeep.
type Block struct {
	// ID is the globally unique, server-assigned usage id.
	ID string

	// BlockID is the short human-stable id, stable across re-sync.
	BlockID string

	// Type identifies the kind of content.
	Type BlockType

	// DisplayName is the human-readable title.
	DisplayName string

	// Graded indicates the block counts towards the course grade.
	Graded bool

	// Descendants holds the ordered ids of direct children.
	// Empty for leaf blocks. Ids that do not resolve within the owning
	// CourseStructure are dangling and must be skipped, never treated
	// as an error.
	Descendants []string

	// DescendantsType is the dominant child type, used for icon selection.
	DescendantsType BlockType

	// Completion is the completed fraction in [0.0, 1.0].
	Completion float64

	// ContainsGatedContent indicates some content is gated behind
	// prerequisites and may not be viewable yet.
	ContainsGatedContent bool

	// StudentViewURL is the rendered student view of this block.
	StudentViewURL string

	// WebURL is the location of this block on the LMS website.
	WebURL string

	// DownloadURL is the offline-downloadable asset for this block,
	// empty when the block has nothing to download.
	DownloadURL string

	// DownloadSize is the asset size in bytes, zero when unknown.
	DownloadSize int64
}

// IsContainer returns true if this block can carry descendants.
func (b *Block) IsContainer() bool {
	return b.Type.IsContainer()
}

// IsCompleted returns true if the block is fully completed.
func (b *Block) IsCompleted() bool {
	return b.Completion == 1.0
}

// IsDownloadable returns true if the block has an offline asset.
func (b *Block) IsDownloadable() bool {
	return b.DownloadURL != ""
}

// HasDescendant returns true if id appears in this block's direct children.
func (b *Block) HasDescendant(id string) bool {
	for _, d := range b.Descendants {
		if d == id {
			return true
		}
	}
	return false
}
