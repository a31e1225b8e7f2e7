package services

import (
	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driving"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

// Ensure PositionTracker implements the interface.
var _ driving.UnitNavigator = (*PositionTracker)(nil)

// noPosition is the index meaning "no valid position": an empty
// sequential, or a target id that resolves nowhere. Navigation surfaces
// render nothing to resume for it; it is never a crash condition.
const noPosition = -1

// PositionTracker is the state machine over one open sequential's
// flattened leaf sequence. It is screen-scoped and single-caller: create
// it when the unit screen opens, drop it when the screen closes, and
// re-derive it from the cached structure on re-entry.
type PositionTracker struct {
	structure  *domain.CourseStructure
	lin        *Linearizer
	notifier   driven.CourseNotifier
	sequential *domain.Block
	chapter    *domain.Block
	leaves     []*domain.Block
	index      int
}

// NewPositionTracker creates a tracker positioned at targetBlockID.
//
// The target may be a leaf (position lands on it), a vertical or
// sequential (position lands on the container's first leaf). Malformed
// input (an id that resolves nowhere, or an empty container) degrades
// to no valid position rather than failing.
func NewPositionTracker(
	structure *domain.CourseStructure,
	notifier driven.CourseNotifier,
	targetBlockID string,
) *PositionTracker {
	t := &PositionTracker{
		structure: structure,
		lin:       NewLinearizer(),
		notifier:  notifier,
		index:     noPosition,
	}

	sequential := t.resolveSequential(targetBlockID)
	if sequential == nil {
		logger.Debug("tracker: no sequential resolves for block %q", targetBlockID)
		return t
	}

	t.setSequential(sequential)
	if target := structure.BlockByID(targetBlockID); target != nil && !target.IsContainer() {
		t.MoveToBlock(targetBlockID)
	}
	return t
}

// resolveSequential walks upward from the target until it finds the
// innermost sequential: leaf → vertical → sequential, or the target
// itself when it already is one.
func (t *PositionTracker) resolveSequential(targetID string) *domain.Block {
	block := t.structure.BlockByID(targetID)
	for block != nil && block.Type != domain.BlockTypeSequential {
		block = t.structure.AncestorOf(block.ID)
	}
	return block
}

// setSequential makes the given sequential current and positions at its
// first leaf, or at no valid position when it has none.
func (t *PositionTracker) setSequential(sequential *domain.Block) {
	t.sequential = sequential
	t.chapter = t.structure.AncestorOf(sequential.ID)
	t.leaves = t.lin.UnitSequence(t.structure, sequential.ID)
	if len(t.leaves) > 0 {
		t.index = 0
	} else {
		t.index = noPosition
	}
}

// Current returns the leaf at the current position, or nil.
func (t *PositionTracker) Current() *domain.Block {
	if t.index == noPosition {
		return nil
	}
	return t.leaves[t.index]
}

// CurrentIndex returns the position within the leaf sequence, or -1.
func (t *PositionTracker) CurrentIndex() int {
	return t.index
}

// Leaves returns the ordered leaf sequence of the open sequential.
func (t *PositionTracker) Leaves() []*domain.Block {
	return t.leaves
}

// MoveToBlock sets the position to the leaf with the given id.
// Returns nil and leaves the position unchanged when the id is not in
// the current sequence (e.g. it belongs to a different sequential).
func (t *PositionTracker) MoveToBlock(id string) *domain.Block {
	for i, leaf := range t.leaves {
		if leaf.ID == id {
			t.index = i
			return leaf
		}
	}
	return nil
}

// MoveByOffset moves the position by the given offset.
// Returns nil at a container boundary without changing position: the
// caller checks IsFirstInContainer/IsLastInContainer to decide between
// hiding the control and offering a section transition.
func (t *PositionTracker) MoveByOffset(offset int) *domain.Block {
	if t.index == noPosition {
		return nil
	}
	next := t.index + offset
	if next < 0 || next >= len(t.leaves) {
		return nil
	}
	t.index = next
	return t.leaves[next]
}

// IsFirstInContainer reports whether the current leaf is the sequence's
// first element.
func (t *PositionTracker) IsFirstInContainer() bool {
	return len(t.leaves) > 0 && t.index == 0
}

// IsLastInContainer reports whether the current leaf is the sequence's
// last element.
func (t *PositionTracker) IsLastInContainer() bool {
	return len(t.leaves) > 0 && t.index == len(t.leaves)-1
}

// CurrentSequential returns the open sequential, or nil.
func (t *PositionTracker) CurrentSequential() *domain.Block {
	return t.sequential
}

// CurrentChapter returns the chapter containing the open sequential.
func (t *PositionTracker) CurrentChapter() *domain.Block {
	return t.chapter
}

// SiblingSequentials returns the ordered sequentials under the current
// chapter, for the jump-to-section picker.
func (t *PositionTracker) SiblingSequentials() []*domain.Block {
	if t.chapter == nil {
		return nil
	}
	return t.structure.ChildrenOf(t.chapter, domain.BlockTypeSequential)
}

// NextSequential returns the sequential a forward transition would open:
// the next one in chapter descendant order that has at least one leaf,
// possibly in the next chapter. Nil at the end of the course.
func (t *PositionTracker) NextSequential() *domain.Block {
	if t.sequential == nil {
		return nil
	}
	all := t.lin.Sequentials(t.structure)
	seen := false
	for _, sequential := range all {
		if seen {
			// Sequentials with no leaves cannot hold a position; skip
			// them the same way an empty container renders no content.
			if len(t.lin.UnitSequence(t.structure, sequential.ID)) > 0 {
				return sequential
			}
			continue
		}
		if sequential.ID == t.sequential.ID {
			seen = true
		}
	}
	return nil
}

// AdvanceToNextSection performs the cross-sequential transition: the
// next sequential becomes current and the position resets to its first
// leaf. Publishes SectionChanged with the new sequential's id. Returns
// nil without changing anything when the course has no next sequential;
// the caller must not loop back to the start.
func (t *PositionTracker) AdvanceToNextSection() *domain.Block {
	next := t.NextSequential()
	if next == nil {
		return nil
	}

	t.setSequential(next)
	if t.notifier != nil {
		t.notifier.Publish(domain.SectionChanged{BlockID: next.ID})
	}
	return t.Current()
}
