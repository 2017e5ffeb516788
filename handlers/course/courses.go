package course

import (
	"encoding/json"
	"strconv"

	"github.com/courseflow/api/model"
	"github.com/courseflow/api/services/storage"
	"github.com/courseflow/api/utils/middleware"
	"github.com/courseflow/api/utils/response"
	"github.com/courseflow/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseHandler handles course catalog requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	spaces    *storage.SpacesClient // nil when Spaces is not configured
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, spaces *storage.SpacesClient) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
		spaces:    spaces,
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Price       int64    `json:"price" validate:"required,min=1"`
	Image       string   `json:"image" validate:"omitempty,max=1000"`
	Instructor  string   `json:"instructor" validate:"required,min=2,max=255"`
	Duration    string   `json:"duration" validate:"omitempty,max=50"`
	Level       string   `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Topics      []string `json:"topics" validate:"omitempty"`
	Featured    bool     `json:"featured"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Price       *int64 `json:"price" validate:"omitempty,min=1"`
	Image       string `json:"image" validate:"omitempty,max=1000"`
	Instructor  string `json:"instructor" validate:"omitempty,min=2,max=255"`
	Duration    string `json:"duration" validate:"omitempty,max=50"`
	Level       string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Featured    *bool  `json:"featured"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	// Parse query parameters
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")
	level := c.Query("level", "")
	featured := c.Query("featured", "")

	// Build query
	query := h.db.Model(&model.Course{})

	// Apply filters
	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ? OR instructor ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if level != "" {
		query = query.Where("level = ?", level)
	}

	if featured == "true" {
		query = query.Where("featured = ?", true)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	// Calculate pagination
	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	// Get courses with pagination
	var courses []model.Course
	if err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// GetEnrolledCourses handles GET /api/v1/courses/enrolled
func (h *CourseHandler) GetEnrolledCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var enrollments []model.UserCourse
	if err := h.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch enrolled courses")
	}

	courses := make([]model.Course, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, e.Course)
	}

	return response.Success(c, courses)
}

// CheckEnrollment handles GET /api/v1/courses/:id/enrollment
func (h *CourseHandler) CheckEnrollment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var count int64
	if err := h.db.Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return response.InternalServerError(c, "Failed to check enrollment")
	}

	return response.Success(c, fiber.Map{
		"enrolled": count > 0,
	})
}

// CreateCourse handles POST /api/v1/courses (admin only)
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	// Parse request body
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Sanitize inputs
	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)
	req.Instructor = validation.SanitizeString(req.Instructor)

	course := model.Course{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Instructor:  req.Instructor,
		Duration:    req.Duration,
		Level:       req.Level,
		Featured:    req.Featured,
	}

	if len(req.Topics) > 0 {
		topics, err := encodeJSON(req.Topics)
		if err != nil {
			return response.BadRequest(c, "Invalid topics")
		}
		course.Topics = topics
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id (admin only)
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	// Parse request body
	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate request
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Check if course exists
	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Update fields if provided
	if req.Title != "" {
		course.Title = validation.SanitizeString(req.Title)
	}
	if req.Description != "" {
		course.Description = validation.SanitizeString(req.Description)
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Image != "" {
		course.Image = req.Image
	}
	if req.Instructor != "" {
		course.Instructor = validation.SanitizeString(req.Instructor)
	}
	if req.Duration != "" {
		course.Duration = req.Duration
	}
	if req.Level != "" {
		course.Level = req.Level
	}
	if req.Featured != nil {
		course.Featured = *req.Featured
	}

	// Save changes
	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id (admin only)
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	// Check if course exists
	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Block deletion once students are enrolled
	var enrollmentCount int64
	if err := h.db.Model(&model.UserCourse{}).Where("course_id = ?", id).Count(&enrollmentCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check course enrollments")
	}

	if enrollmentCount > 0 {
		return response.BadRequest(c, "Cannot delete course with enrolled students")
	}

	// Delete course (soft delete)
	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

// UploadCourseImage handles POST /api/v1/courses/:id/image (admin only)
func (h *CourseHandler) UploadCourseImage(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.ServiceUnavailable(c, "File storage is not configured")
	}

	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "Image file is required")
	}

	// 5MB limit for course images
	if fileHeader.Size > 5*1024*1024 {
		return response.BadRequest(c, "Image must be smaller than 5MB")
	}

	contentType := storage.GetContentType(fileHeader.Filename)
	if contentType == "application/octet-stream" {
		return response.BadRequest(c, "Unsupported image format")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	key := storage.GenerateKey("courses", fileHeader.Filename)
	url, err := h.spaces.UploadFile(c.Context(), key, file, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to upload image")
	}

	course.Image = url
	if err := h.db.Model(&course).Update("image", url).Error; err != nil {
		return response.InternalServerError(c, "Failed to save image URL")
	}

	return response.SuccessWithMessage(c, "Image uploaded successfully", fiber.Map{
		"image": url,
	})
}

func encodeJSON(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
