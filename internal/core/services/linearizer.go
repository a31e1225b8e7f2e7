package services

import "github.com/opencourse-labs/stride-cli/internal/core/domain"

// Linearizer turns the flat block graph into the ordered sequences each
// screen needs. All ordering follows the server-provided descendant
// arrays verbatim; the linearizer never re-sorts by name, date or type,
// and dangling descendant ids are skipped silently.
//
// Linearizer is stateless; the same instance serves every screen and
// every structure, including the videos-only projection.
type Linearizer struct{}

// NewLinearizer creates a linearizer.
func NewLinearizer() *Linearizer {
	return &Linearizer{}
}

// OutlineEntry is one chapter row of the outline view with its
// sequential children for expand/collapse display.
type OutlineEntry struct {
	// Chapter is the top-level container.
	Chapter *domain.Block

	// Sequentials are the chapter's sequential children, in order.
	Sequentials []*domain.Block
}

// Outline is the course outline view.
type Outline struct {
	// Entries are the chapters in root descendant order.
	Entries []OutlineEntry

	// ResumeBlock is the first not-fully-completed leaf in a depth-first
	// walk honouring descendant order, or nil when the course is fully
	// complete or the structure is empty.
	ResumeBlock *domain.Block

	// ResumeSequential is the sequential containing ResumeBlock, used to
	// open the right section. Nil whenever ResumeBlock is nil.
	ResumeSequential *domain.Block
}

// SectionRow is one vertical of the section view.
type SectionRow struct {
	// Vertical is the unit container.
	Vertical *domain.Block

	// Leaves are the vertical's leaf children, in order.
	Leaves []*domain.Block
}

// SectionView is the vertical listing for one sequential.
type SectionView struct {
	// Sequential is the open section.
	Sequential *domain.Block

	// Rows are the sequential's verticals, in order.
	Rows []SectionRow
}

// BuildOutline produces the outline view for a structure.
// A nil or empty structure yields an outline with no entries and a nil
// resume pointer, not an error.
func (l *Linearizer) BuildOutline(s *domain.CourseStructure) Outline {
	var outline Outline
	root := s.RootBlock()
	if root == nil {
		return outline
	}

	for _, chapter := range s.ChildrenOf(root, domain.BlockTypeChapter) {
		outline.Entries = append(outline.Entries, OutlineEntry{
			Chapter:     chapter,
			Sequentials: s.ChildrenOf(chapter, domain.BlockTypeSequential),
		})
	}

	outline.ResumeBlock, outline.ResumeSequential = l.resumePointer(s, outline.Entries)
	return outline
}

// resumePointer walks chapter → sequential → vertical → leaf in
// descendant order and returns the first incomplete leaf with its
// sequential. Completion marked out of order still resumes at the
// earliest incomplete leaf in course order.
func (l *Linearizer) resumePointer(
	s *domain.CourseStructure,
	entries []OutlineEntry,
) (*domain.Block, *domain.Block) {
	for _, entry := range entries {
		for _, sequential := range entry.Sequentials {
			for _, vertical := range s.ChildrenOf(sequential, domain.BlockTypeVertical) {
				for _, leaf := range s.ChildrenOf(vertical, "") {
					if leaf.IsContainer() {
						continue
					}
					if !leaf.IsCompleted() {
						return leaf, sequential
					}
				}
			}
		}
	}
	return nil, nil
}

// BuildSectionView produces the vertical listing for one sequential.
// An unknown sequential id yields an empty view, not an error.
func (l *Linearizer) BuildSectionView(s *domain.CourseStructure, sequentialID string) SectionView {
	var view SectionView
	sequential := s.BlockByID(sequentialID)
	if sequential == nil || sequential.Type != domain.BlockTypeSequential {
		return view
	}

	view.Sequential = sequential
	for _, vertical := range s.ChildrenOf(sequential, domain.BlockTypeVertical) {
		row := SectionRow{Vertical: vertical}
		for _, leaf := range s.ChildrenOf(vertical, "") {
			if leaf.IsContainer() {
				continue
			}
			row.Leaves = append(row.Leaves, leaf)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// UnitSequence flattens all leaf descendants across all verticals of one
// sequential, in order. This is the sequence the unit pager advances
// through: next crosses vertical boundaries transparently but stops at
// the sequential boundary.
func (l *Linearizer) UnitSequence(s *domain.CourseStructure, sequentialID string) []*domain.Block {
	var leaves []*domain.Block
	for _, row := range l.BuildSectionView(s, sequentialID).Rows {
		leaves = append(leaves, row.Leaves...)
	}
	return leaves
}

// Sequentials returns every sequential of the course in chapter
// descendant order. This is the order cross-section advancement follows.
func (l *Linearizer) Sequentials(s *domain.CourseStructure) []*domain.Block {
	root := s.RootBlock()
	if root == nil {
		return nil
	}
	var out []*domain.Block
	for _, chapter := range s.ChildrenOf(root, domain.BlockTypeChapter) {
		out = append(out, s.ChildrenOf(chapter, domain.BlockTypeSequential)...)
	}
	return out
}

// DownloadableLeaves returns the downloadable leaves under a scope block:
// the block itself when it is a downloadable leaf, otherwise every
// downloadable leaf beneath it in descendant order. An unknown id yields
// an empty result.
func (l *Linearizer) DownloadableLeaves(s *domain.CourseStructure, scopeID string) []*domain.Block {
	block := s.BlockByID(scopeID)
	if block == nil {
		return nil
	}
	var out []*domain.Block
	l.collectDownloadable(s, block, &out)
	return out
}

func (l *Linearizer) collectDownloadable(s *domain.CourseStructure, block *domain.Block, out *[]*domain.Block) {
	if !block.IsContainer() {
		if block.IsDownloadable() {
			*out = append(*out, block)
		}
		return
	}
	for _, child := range s.ChildrenOf(block, "") {
		l.collectDownloadable(s, child, out)
	}
}
