package domain

import "time"

// EnrolledCourse is one entry in the user's enrolment list.
// It carries only what course browsing needs; the full content graph
// lives in CourseStructure and is fetched separately.
type EnrolledCourse struct {
	// CourseID is the course id.
	CourseID string

	// Name is the course display name.
	Name string

	// Org is the organisation offering the course.
	Org string

	// Number is the course number within the organisation.
	Number string

	// Start is when the course opens, zero when unscheduled.
	Start time.Time

	// End is when the course closes, zero when open-ended.
	End time.Time

	// IsActive indicates the enrolment has not been unenrolled.
	IsActive bool

	// Expired indicates audit access has lapsed.
	Expired bool
}
