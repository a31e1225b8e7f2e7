package domain

import "time"

// CoursewareAccess describes whether the courseware may be shown,
// and if not, why.
type CoursewareAccess struct {
	// HasAccess is true when the courseware can be displayed.
	HasAccess bool

	// ErrorCode is the machine-readable denial reason.
	ErrorCode string

	// DeveloperMessage is the server's diagnostic text.
	DeveloperMessage string

	// UserMessage is the text suitable for display.
	UserMessage string

	// AdditionalContextUserMessage carries extra display text, if any.
	AdditionalContextUserMessage string

	// UserFragment names the screen fragment the denial applies to.
	UserFragment string
}

// CourseMedia holds the course image locations.
type CourseMedia struct {
	// CourseImageURL is the banner image for the course.
	CourseImageURL string
}

// CourseStructure is the root aggregate for one course's content graph.
//
// BlockData is intentionally flat: lookups are by id across the whole set
// rather than recursive tree walks. Exactly one block carries the Root id.
// A structure is produced whole by a fetch or cache load and is never
// partially updated; refresh replaces the entire instance.
type CourseStructure struct {
	// ID is the course id.
	ID string

	// Root is the id of the top-level container block.
	Root string

	// BlockData holds every block reachable from Root, keyed by block id.
	BlockData map[string]*Block

	// Name is the course display name.
	Name string

	// Number is the course number within the organisation.
	Number string

	// Org is the organisation offering the course.
	Org string

	// Start is when the course opens, zero when unscheduled.
	Start time.Time

	// StartDisplay is the server-rendered start text.
	StartDisplay string

	// End is when the course closes, zero when open-ended.
	End time.Time

	// CoursewareAccess describes access permission for this user.
	CoursewareAccess CoursewareAccess

	// Media holds course imagery.
	Media CourseMedia

	// CertificateURL is the earned certificate location, empty when none.
	CertificateURL string

	// IsSelfPaced indicates the course has no instructor-led schedule.
	IsSelfPaced bool
}

// RootBlock returns the top-level container, or nil if the structure is
// inconsistent and Root does not resolve.
func (s *CourseStructure) RootBlock() *Block {
	if s == nil {
		return nil
	}
	return s.BlockData[s.Root]
}

// BlockByID returns the block with the given id, or nil when absent.
func (s *CourseStructure) BlockByID(id string) *Block {
	if s == nil {
		return nil
	}
	return s.BlockData[id]
}

// ChildrenOf resolves a block's descendant ids against this structure,
// preserving descendant order. Dangling ids are skipped silently. When
// ofType is non-empty only blocks of that type are returned.
func (s *CourseStructure) ChildrenOf(block *Block, ofType BlockType) []*Block {
	if s == nil || block == nil {
		return nil
	}
	children := make([]*Block, 0, len(block.Descendants))
	for _, id := range block.Descendants {
		child, ok := s.BlockData[id]
		if !ok {
			continue
		}
		if ofType != "" && child.Type != ofType {
			continue
		}
		children = append(children, child)
	}
	return children
}

// AncestorOf returns the first block whose descendants contain targetId,
// walking upward one level without a parent pointer. The walk runs
// depth-first from the root in descendant order, so when two containers
// reference the same id the earlier one in document order wins and the
// answer is stable across calls. Returns nil when no reachable block
// references the target. The traversal is deliberate: graphs are tens
// to low hundreds of nodes and a flat list needs no back-reference
// upkeep when the structure is wholesale-replaced.
func (s *CourseStructure) AncestorOf(targetID string) *Block {
	if s == nil || targetID == "" {
		return nil
	}
	root := s.BlockData[s.Root]
	if root == nil {
		return nil
	}
	visited := make(map[string]bool, len(s.BlockData))
	return s.findReferrer(root, targetID, visited)
}

func (s *CourseStructure) findReferrer(block *Block, targetID string, visited map[string]bool) *Block {
	if visited[block.ID] {
		return nil
	}
	visited[block.ID] = true

	if block.HasDescendant(targetID) {
		return block
	}
	for _, id := range block.Descendants {
		child := s.BlockData[id]
		if child == nil {
			continue
		}
		if found := s.findReferrer(child, targetID, visited); found != nil {
			return found
		}
	}
	return nil
}

// VideoStructure derives the videos-only projection of this structure:
// the same container skeleton filtered so only chapters, sequentials and
// verticals that contain at least one video leaf participate, and video
// blocks are the only leaves. It is a view over the same data, never
// cached separately.
func (s *CourseStructure) VideoStructure() *CourseStructure {
	if s == nil {
		return nil
	}
	filtered := make(map[string]*Block, len(s.BlockData))
	root := s.RootBlock()
	if root != nil {
		if kept := filterVideoBlock(s, root, filtered); kept != nil {
			filtered[kept.ID] = kept
		}
	}
	out := *s
	out.BlockData = filtered
	return &out
}

// filterVideoBlock returns a copy of block restricted to video-bearing
// descendants, or nil when nothing under it is a video.
func filterVideoBlock(s *CourseStructure, block *Block, filtered map[string]*Block) *Block {
	if block.Type == BlockTypeVideo {
		copied := *block
		return &copied
	}
	if !block.IsContainer() && block.ID != s.Root {
		return nil
	}
	var keptIDs []string
	for _, id := range block.Descendants {
		child, ok := s.BlockData[id]
		if !ok {
			continue
		}
		kept := filterVideoBlock(s, child, filtered)
		if kept == nil {
			continue
		}
		filtered[kept.ID] = kept
		keptIDs = append(keptIDs, kept.ID)
	}
	if len(keptIDs) == 0 {
		return nil
	}
	copied := *block
	copied.Descendants = keptIDs
	return &copied
}

// HasVideos returns true if at least one video leaf exists in the structure.
func (s *CourseStructure) HasVideos() bool {
	if s == nil {
		return false
	}
	for _, b := range s.BlockData {
		if b.Type == BlockTypeVideo {
			return true
		}
	}
	return false
}
