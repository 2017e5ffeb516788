package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course represents a purchasable course in the catalog
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	// Price in whole rupees. The payment flow converts this to paise at
	// order creation; the stored price is never mutated by payments.
	Price           int64          `gorm:"not null" json:"price"`
	Image           string         `gorm:"type:text" json:"image"`
	Instructor      string         `gorm:"not null" json:"instructor"`
	Duration        string         `gorm:"type:varchar(50)" json:"duration"`
	Level           string         `gorm:"type:varchar(50)" json:"level"` // Beginner, Intermediate, Advanced
	Topics          datatypes.JSON `json:"topics,omitempty"`
	Curriculum      datatypes.JSON `json:"curriculum,omitempty"`
	Rating          float64        `gorm:"default:0" json:"rating"`
	EnrollmentCount int            `gorm:"default:0" json:"enrollment_count"`
	Featured        bool           `gorm:"default:false" json:"featured"`

	// Relationships
	Users []UserCourse `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
