package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sims-go-api/internal/dto"
	"github.com/noah-isme/sims-go-api/internal/models"
	"github.com/noah-isme/sims-go-api/internal/repository"
)

// noCourse is displayed when a student has no course assigned.
const noCourse = "N/A"

// Actor identifies who performed a mutating action, for the audit trail.
type Actor struct {
	ID       uint
	Username string
	Role     string
}

// StudentService orchestrates the dashboard listing and student mutations.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentRow, error)
	Create(ctx context.Context, req dto.AddStudentRequest, actor Actor) (models.Student, error)
	Delete(ctx context.Context, id uint, actor Actor) (bool, error)
	CourseOptions(ctx context.Context) ([]dto.CourseOption, error)
}

type studentService struct {
	students  repository.StudentRepository
	courses   repository.CourseRepository
	audit     AuditService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, courses repository.CourseRepository, audit AuditService, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		courses:   courses,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

// List returns all students ordered by id ascending with course fields
// resolved. Students without a course read "N/A" in both course columns.
func (s *studentService) List(ctx context.Context) ([]dto.StudentRow, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.StudentRow, 0, len(students))
	for _, student := range students {
		row := dto.StudentRow{
			ID:                student.ID,
			StudentID:         student.StudentID,
			FullName:          student.FullName,
			Email:             student.Email,
			CourseCode:        noCourse,
			CourseDescription: noCourse,
		}
		if student.Course != nil {
			row.CourseCode = student.Course.CourseCode
			row.CourseDescription = student.Course.CourseDescription
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Create adds a student record from the add-student form.
func (s *studentService) Create(ctx context.Context, req dto.AddStudentRequest, actor Actor) (models.Student, error) {
	studentID := s.sanitizer.Sanitize(strings.TrimSpace(req.StudentID))
	fullName := s.sanitizer.Sanitize(strings.TrimSpace(req.FullName))
	email := strings.TrimSpace(req.Email)

	if studentID == "" || fullName == "" || email == "" {
		return models.Student{}, &ValidationError{Field: "form", Message: "Please fill in all fields."}
	}

	if err := s.validator.Var(email, "required,email"); err != nil {
		return models.Student{}, &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	}

	student := models.Student{
		StudentID: studentID,
		FullName:  fullName,
		Email:     email,
	}

	if courseValue := strings.TrimSpace(req.CourseID); courseValue != "" {
		courseID, err := strconv.ParseUint(courseValue, 10, 32)
		if err != nil {
			return models.Student{}, &ValidationError{Field: "course_id", Message: "Please select a valid course."}
		}

		course, err := s.courses.GetByID(ctx, uint(courseID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Student{}, ErrCourseNotFound
			}
			return models.Student{}, err
		}

		id := course.ID
		student.CourseID = &id
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return models.Student{}, err
	}

	s.audit.Publish("student.created", map[string]interface{}{
		"student_id": student.ID,
		"actor":      actor.Username,
	})
	s.logger.Info().Uint("student_id", student.ID).Str("actor", actor.Username).Msg("student created")

	return student, nil
}

// Delete removes the student by primary key. Deleting a missing id is a clean
// no-op: the method reports false and no error, so retries are safe.
func (s *studentService) Delete(ctx context.Context, id uint, actor Actor) (bool, error) {
	affected, err := s.students.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if affected == 0 {
		return false, nil
	}

	s.audit.Publish("student.deleted", map[string]interface{}{
		"student_id": id,
		"actor":      actor.Username,
		"actor_role": actor.Role,
	})
	s.logger.Info().Uint("student_id", id).Str("actor", actor.Username).Msg("student deleted")

	return true, nil
}

// CourseOptions returns the course catalog for the add-student form.
func (s *studentService) CourseOptions(ctx context.Context) ([]dto.CourseOption, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]dto.CourseOption, 0, len(courses))
	for _, course := range courses {
		options = append(options, dto.CourseOption{
			ID:                course.ID,
			CourseCode:        course.CourseCode,
			CourseDescription: course.CourseDescription,
		})
	}

	return options, nil
}
