package models

import "time"

// Student is an enrolled student record. CourseID is nullable so a student
// without an assigned course still lists (resolved as "N/A" at the service layer).
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID string    `gorm:"size:32;uniqueIndex;not null" json:"student_id"`
	FullName  string    `gorm:"size:255;not null" json:"fullname"`
	Email     string    `gorm:"size:100;not null" json:"email"`
	CourseID  *uint     `json:"course_id"`
	Course    *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
