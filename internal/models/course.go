package models

// Course is a normalized course record referenced by students.
type Course struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	CourseCode        string `gorm:"size:32;uniqueIndex;not null" json:"course_code"`
	CourseDescription string `gorm:"size:255;not null" json:"course_description"`
}
