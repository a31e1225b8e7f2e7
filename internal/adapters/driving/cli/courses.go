package cli

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

var (
	coursesJSON bool
	coursesAll  bool
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List your course enrolments",
	Long: `Lists the courses you are enrolled in. Expired audit enrolments are
hidden unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runCourses,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output as JSON")
	coursesCmd.Flags().BoolVar(&coursesAll, "all", false, "include expired enrolments")
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, args []string) error {
	if courseAPI == nil {
		return errors.New("course API not configured")
	}

	courses, err := courseAPI.EnrolledCourses(context.Background())
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}

	if !coursesAll {
		kept := courses[:0]
		for _, c := range courses {
			if !c.Expired {
				kept = append(kept, c)
			}
		}
		courses = kept
	}

	if coursesJSON {
		return outputCoursesJSON(cmd, courses)
	}
	return outputCoursesTable(cmd, courses)
}

func outputCoursesJSON(cmd *cobra.Command, courses []domain.EnrolledCourse) error {
	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal courses: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputCoursesTable(cmd *cobra.Command, courses []domain.EnrolledCourse) error {
	if len(courses) == 0 {
		cmd.Println("No enrolments found.")
		return nil
	}

	cmd.Println("Courses:")
	cmd.Println()
	for _, c := range courses {
		label := c.Name
		if label == "" {
			label = c.CourseID
		}
		cmd.Printf("  %s\n", label)
		cmd.Printf("    %s", c.CourseID)
		if c.Org != "" && c.Number != "" {
			cmd.Printf("  (%s %s)", c.Org, c.Number)
		}
		if c.Expired {
			cmd.Print("  [expired]")
		}
		cmd.Println()
	}
	cmd.Println()
	cmd.Printf("%d course(s)\n", len(courses))
	return nil
}
