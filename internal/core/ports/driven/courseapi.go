package driven

import (
	"context"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// CourseAPI is the remote LMS boundary.
// Implementations handle transport, authentication and token refresh;
// the core only sees whole results or an error, never partial data.
type CourseAPI interface {
	// FetchCourseStructure fetches the complete block graph for a course.
	// Fails with domain.ErrConnectivity on network problems,
	// domain.ErrAuthExpired when the session cannot be refreshed and
	// domain.ErrRemote on server errors.
	FetchCourseStructure(ctx context.Context, courseID string) (*domain.CourseStructure, error)

	// EnrolledCourses lists the authenticated user's course enrolments.
	EnrolledCourses(ctx context.Context) ([]domain.EnrolledCourse, error)

	// MarkBlocksCompletion reports the given blocks as completed.
	// Fire-and-forget from the core's perspective: no partial results,
	// the caller decides whether to retry on failure.
	MarkBlocksCompletion(ctx context.Context, courseID string, blockIDs []string) error
}
