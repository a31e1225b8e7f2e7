package driving

import "github.com/opencourse-labs/stride-cli/internal/core/domain"

// UnitNavigator tracks the user's position within one open sequential's
// flattened leaf sequence and performs cross-sequential transitions.
//
// A navigator is screen-scoped: created when a unit screen is entered
// with a target block id, discarded when the screen is torn down, and
// re-derived from the cached structure on re-entry. It is not safe for
// concurrent use; the owning screen is its single caller.
type UnitNavigator interface {
	// Current returns the leaf at the current position, or nil when the
	// navigator has no valid position (index -1).
	Current() *domain.Block

	// CurrentIndex returns the position within the leaf sequence,
	// or -1 for "no valid position".
	CurrentIndex() int

	// Leaves returns the ordered leaf sequence of the open sequential,
	// spanning all of its verticals.
	Leaves() []*domain.Block

	// MoveToBlock sets the position to the leaf with the given id and
	// returns it. Returns nil and leaves the position unchanged when the
	// id is not in the current sequence.
	MoveToBlock(id string) *domain.Block

	// MoveByOffset moves the position by the given offset (±1 for
	// prev/next) and returns the new leaf. Returns nil at a container
	// boundary, leaving the position unchanged; the caller consults
	// IsFirstInContainer/IsLastInContainer to decide what to do next.
	MoveByOffset(offset int) *domain.Block

	// IsFirstInContainer reports whether the current leaf is the first
	// of the open sequential.
	IsFirstInContainer() bool

	// IsLastInContainer reports whether the current leaf is the last
	// of the open sequential.
	IsLastInContainer() bool

	// CurrentSequential returns the open sequential, or nil.
	CurrentSequential() *domain.Block

	// CurrentChapter returns the chapter containing the open sequential,
	// or nil.
	CurrentChapter() *domain.Block

	// SiblingSequentials returns the ordered sequentials under the
	// current chapter, for the jump-to-section picker.
	SiblingSequentials() []*domain.Block

	// NextSequential returns the sequential a forward section transition
	// would open, or nil at the end of the course.
	NextSequential() *domain.Block

	// AdvanceToNextSection moves to the first leaf of the next
	// sequential, crossing into the next chapter when needed, and
	// publishes SectionChanged. Returns nil without changing position
	// when there is no next sequential anywhere in the course.
	AdvanceToNextSection() *domain.Block
}
