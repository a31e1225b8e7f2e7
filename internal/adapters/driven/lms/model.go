package lms

import (
	"time"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// Video download profiles in preference order. The first profile the
// server offers wins; "fallback" is the desktop rendition and comes
// last because of its size.
var downloadProfiles = []string{"mobile_low", "mobile_high", "desktop_mp4", "fallback"}

// blocksResponse is the payload of the course blocks endpoint.
type blocksResponse struct {
	Root   string              `json:"root"`
	Blocks map[string]blockDTO `json:"blocks"`
}

// blockDTO is one block as the LMS serialises it.
type blockDTO struct {
	ID                   string          `json:"id"`
	BlockID              string          `json:"block_id"`
	Type                 string          `json:"type"`
	DisplayName          string          `json:"display_name"`
	Graded               bool            `json:"graded"`
	Descendants          []string        `json:"descendants"`
	Completion           float64         `json:"completion"`
	ContainsGatedContent bool            `json:"contains_gated_content"`
	StudentViewURL       string          `json:"student_view_url"`
	LMSWebURL            string          `json:"lms_web_url"`
	StudentViewData      *studentViewDTO `json:"student_view_data"`
}

// studentViewDTO carries the video rendition table for video blocks.
type studentViewDTO struct {
	EncodedVideos map[string]encodedVideoDTO `json:"encoded_videos"`
}

// encodedVideoDTO is one downloadable rendition.
type encodedVideoDTO struct {
	URL      string `json:"url"`
	FileSize int64  `json:"file_size"`
}

// courseInfoDTO is the course metadata attached to an enrolment.
type courseInfoDTO struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Org              string          `json:"org"`
	Number           string          `json:"number"`
	Start            string          `json:"start"`
	StartDisplay     string          `json:"start_display"`
	End              string          `json:"end"`
	Media            *courseMediaDTO `json:"media"`
	CoursewareAccess *accessDTO      `json:"courseware_access"`
	CertificateURL   string          `json:"certificate_url"`
	IsSelfPaced      bool            `json:"is_self_paced"`
}

// courseMediaDTO holds course imagery locations.
type courseMediaDTO struct {
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	CourseImage struct {
		URI string `json:"uri"`
	} `json:"course_image"`
}

// accessDTO is the courseware access verdict for the user.
type accessDTO struct {
	HasAccess                    bool   `json:"has_access"`
	ErrorCode                    string `json:"error_code"`
	DeveloperMessage             string `json:"developer_message"`
	UserMessage                  string `json:"user_message"`
	AdditionalContextUserMessage string `json:"additional_context_user_message"`
	UserFragment                 string `json:"user_fragment"`
}

// enrollmentDTO is one entry of the enrolments endpoint.
type enrollmentDTO struct {
	Created  string        `json:"created"`
	Mode     string        `json:"mode"`
	IsActive bool          `json:"is_active"`
	Expired  bool          `json:"audit_access_expires_expired"`
	Course   courseInfoDTO `json:"course"`
}

// enrollmentsResponse is the paginated enrolments payload.
type enrollmentsResponse struct {
	Next    string          `json:"next"`
	Results []enrollmentDTO `json:"results"`
}

// tokenResponse is the OAuth2 token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// completionBody is the request payload for the completion batch endpoint.
type completionBody struct {
	CourseKey string             `json:"course_key"`
	Blocks    map[string]float64 `json:"blocks"`
}

// mapToDomain converts a blocks payload into a course structure.
// Course-level metadata is not part of the blocks endpoint, so only the
// graph and the course id are filled in; callers merge enrolment
// metadata separately when they have it.
func (r *blocksResponse) mapToDomain(courseID string) *domain.CourseStructure {
	blocks := make(map[string]*domain.Block, len(r.Blocks))
	for id, dto := range r.Blocks {
		blocks[id] = dto.mapToDomain()
	}
	for _, block := range blocks {
		block.DescendantsType = dominantChildType(block, blocks)
	}
	return &domain.CourseStructure{
		ID:        courseID,
		Root:      r.Root,
		BlockData: blocks,
	}
}

// dominantChildType picks the most frequent type among a container's
// resolved children, for icon selection. Ties go to the earlier child;
// leaves and childless containers get BlockTypeOther.
func dominantChildType(block *domain.Block, blocks map[string]*domain.Block) domain.BlockType {
	counts := make(map[domain.BlockType]int)
	dominant := domain.BlockTypeOther
	best := 0
	for _, id := range block.Descendants {
		child, ok := blocks[id]
		if !ok {
			continue
		}
		counts[child.Type]++
		if counts[child.Type] > best {
			best = counts[child.Type]
			dominant = child.Type
		}
	}
	return dominant
}

func (d *blockDTO) mapToDomain() *domain.Block {
	block := &domain.Block{
		ID:                   d.ID,
		BlockID:              d.BlockID,
		Type:                 domain.ParseBlockType(d.Type),
		DisplayName:          d.DisplayName,
		Graded:               d.Graded,
		Descendants:          d.Descendants,
		Completion:           d.Completion,
		ContainsGatedContent: d.ContainsGatedContent,
		StudentViewURL:       d.StudentViewURL,
		WebURL:               d.LMSWebURL,
	}
	if d.StudentViewData != nil {
		for _, profile := range downloadProfiles {
			if video, ok := d.StudentViewData.EncodedVideos[profile]; ok && video.URL != "" {
				block.DownloadURL = video.URL
				block.DownloadSize = video.FileSize
				break
			}
		}
	}
	return block
}

func (d *enrollmentDTO) mapToDomain() domain.EnrolledCourse {
	return domain.EnrolledCourse{
		CourseID: d.Course.ID,
		Name:     d.Course.Name,
		Org:      d.Course.Org,
		Number:   d.Course.Number,
		Start:    parseTime(d.Course.Start),
		End:      parseTime(d.Course.End),
		IsActive: d.IsActive,
		Expired:  d.Expired,
	}
}

// parseTime reads the LMS's ISO 8601 timestamps, returning the zero
// time for absent or unparseable values.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
