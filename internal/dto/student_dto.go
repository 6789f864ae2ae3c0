package dto

// StudentRow is one dashboard table row with course fields already resolved.
// CourseCode and CourseDescription read "N/A" when the student has no course.
type StudentRow struct {
	ID                uint   `json:"id"`
	StudentID         string `json:"student_id"`
	FullName          string `json:"fullname"`
	Email             string `json:"email"`
	CourseCode        string `json:"course_code"`
	CourseDescription string `json:"course_description"`
}

// DashboardResponse is the payload behind the dashboard page.
type DashboardResponse struct {
	User      SessionInfo  `json:"user"`
	Students  []StudentRow `json:"students"`
	CSRFToken string       `json:"csrf_token"`
}

// AddStudentRequest carries the add-student form fields. CourseID is the raw
// form value; empty means no course assigned.
type AddStudentRequest struct {
	StudentID string `form:"student_id" json:"student_id"`
	FullName  string `form:"fullname" json:"fullname"`
	Email     string `form:"email" json:"email"`
	CourseID  string `form:"course_id" json:"course_id"`
}

// CourseOption is a course catalog entry for the add-student form select.
type CourseOption struct {
	ID                uint   `json:"id"`
	CourseCode        string `json:"course_code"`
	CourseDescription string `json:"course_description"`
}

// StudentFormResponse backs the add-student form render.
type StudentFormResponse struct {
	Courses   []CourseOption `json:"courses"`
	CSRFToken string         `json:"csrf_token"`
}
