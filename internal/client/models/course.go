package models

// Course is the dashboard summary of a course.
type Course struct {
	Name            string `json:"name"`
	Term            string `json:"term"`
	AssignmentCount int    `json:"assignment_count"`
}
