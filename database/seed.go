package database

import (
	"encoding/json"
	"log"

	"github.com/courseflow/api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedCourses inserts the starter catalog if the courses table is empty.
func SeedCourses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Courses already seeded, skipping")
		return nil
	}

	courses := []model.Course{
		{
			Title:       "AI & Machine Learning Internship Program",
			Description: "Comprehensive internship program covering Python for Data Science, machine learning models, and practical applications with mini-project deployment.",
			Price:       1499,
			Image:       "https://images.unsplash.com/photo-1555949963-aa79dcee981c?w=800&auto=format&fit=crop",
			Instructor:  "Courseflow Mentor Team",
			Duration:    "15 days",
			Level:       "Beginner",
			Topics: mustJSON([]string{
				"Python for Data Science",
				"Exploratory Data Analysis",
				"Supervised Learning Models",
				"Tree Models, Bagging and Boosting",
				"Clustering and Neural Networks",
			}),
			Rating:   4.8,
			Featured: true,
		},
		{
			Title:       "Cyber Security Internship",
			Description: "Hands-on sessions with live experience in cybersecurity: ethical hacking, web application VAPT, bug bounty and malware analysis.",
			Price:       1499,
			Image:       "https://images.unsplash.com/photo-1614064641938-3bbee52942c7?w=800&auto=format&fit=crop",
			Instructor:  "Courseflow Mentor Team",
			Duration:    "15 days",
			Level:       "Intermediate",
			Topics: mustJSON([]string{
				"Ethical Hacking",
				"VAPT - Web Application",
				"Bug Bounty",
				"Email Security",
				"Malware Analysis",
			}),
			Rating:   4.7,
			Featured: true,
		},
		{
			Title:       "Complete Web Development Bootcamp",
			Description: "Learn HTML, CSS, JavaScript, React and Node.js to become a full-stack web developer, covering both frontend and backend.",
			Price:       999,
			Image:       "https://images.unsplash.com/photo-1593720213428-28a5b9e94613?w=800&auto=format&fit=crop",
			Instructor:  "John Smith",
			Duration:    "48 hours",
			Level:       "Beginner",
			Topics: mustJSON([]string{
				"HTML", "CSS", "JavaScript", "React", "Node.js",
			}),
			Rating: 4.5,
		},
	}

	if err := db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d courses", len(courses))
	return nil
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(data)
}
