package router

import (
	"log"
	"time"

	"github.com/courseflow/api/config"
	"github.com/courseflow/api/database"
	"github.com/courseflow/api/handlers"
	auth_handlers "github.com/courseflow/api/handlers/auth"
	course_handlers "github.com/courseflow/api/handlers/course"
	inquiry_handlers "github.com/courseflow/api/handlers/inquiry"
	payment_handlers "github.com/courseflow/api/handlers/payment"
	"github.com/courseflow/api/services/email"
	"github.com/courseflow/api/services/payments"
	"github.com/courseflow/api/services/razorpay"
	"github.com/courseflow/api/services/storage"
	"github.com/courseflow/api/utils/auth"
	"github.com/courseflow/api/utils/cache"
	"github.com/courseflow/api/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires all handlers and middleware onto the app
func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnviornmentVariable) {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "courseflow-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.GetDB()

	// Initialize Redis cache for brute force protection
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Auth middleware validates tokens against the stored token version
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Spaces client for course images; nil when not configured
	var spaces *storage.SpacesClient
	if getEnv.SPACES_ACCESS_KEY != "" {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. Image uploads will be disabled.", err)
		}
	}

	// Payment engine: Razorpay gateway + GORM-backed stores
	paymentService := payments.NewService(
		payments.Config{
			KeyID:     getEnv.RAZORPAY_KEY_ID,
			KeySecret: getEnv.RAZORPAY_KEY_SECRET,
			TestMode:  getEnv.PaymentTestMode(),
		},
		database.NewPaymentStores(db),
		razorpay.NewClient(razorpay.Config{
			KeyID:     getEnv.RAZORPAY_KEY_ID,
			KeySecret: getEnv.RAZORPAY_KEY_SECRET,
		}),
	)

	mailer := email.NewSender(email.Config{
		Host:     getEnv.SMTP_HOST,
		Port:     getEnv.SMTP_PORT,
		Username: getEnv.SMTP_USERNAME,
		Password: getEnv.SMTP_PASSWORD,
		From:     getEnv.SMTP_FROM,
	})

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, mailer, getEnv.ClientURL(), getEnv.RequireEmailVerification())
	courseHandler := course_handlers.NewCourseHandler(db, spaces)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService, db, mailer)
	inquiryHandler := inquiry_handlers.NewInquiryHandler(db, paymentService)

	// Apply security middleware
	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/verify-email/:token", authHandler.VerifyEmail)
	authGroup.Post("/resend-verification", authHandler.ResendVerification)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Get("/reset-password/:token/verify", authHandler.VerifyResetToken)
	authGroup.Post("/reset-password/:token", authHandler.ResetPassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)
	profileGroup.Put("/password", authHandler.ChangePassword)

	// Courses routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)                                                     // Public: List courses
	courses.Get("/enrolled", authMiddleware.Required(), courseHandler.GetEnrolledCourses)           // Protected: User's courses
	courses.Get("/:id", courseHandler.GetCourse)                                                    // Public: Get course by ID
	courses.Get("/:id/enrollment", authMiddleware.Required(), courseHandler.CheckEnrollment)        // Protected: Enrollment status
	courses.Post("/", authMiddleware.RequireAdmin(), courseHandler.CreateCourse)                    // Admin only: Create course
	courses.Put("/:id", authMiddleware.RequireAdmin(), courseHandler.UpdateCourse)                  // Admin only: Update course
	courses.Delete("/:id", authMiddleware.RequireAdmin(), courseHandler.DeleteCourse)               // Admin only: Delete course
	courses.Post("/:id/image", authMiddleware.RequireAdmin(), courseHandler.UploadCourseImage)      // Admin only: Upload image

	// Payment routes (protected)
	paymentsGroup := api.Group("/payments", authMiddleware.Required())
	paymentsGroup.Post("/create-order", paymentHandler.CreateOrder)
	paymentsGroup.Post("/verify", paymentHandler.VerifyPayment)
	paymentsGroup.Post("/verify-simple", paymentHandler.VerifyPaymentSimple)
	paymentsGroup.Get("/history", paymentHandler.History)

	// Inquiry routes: submission and payment are public (leads are not
	// registered users), listing and status are admin
	inquiries := api.Group("/inquiries")
	inquiries.Post("/", inquiryHandler.CreateInquiry)
	inquiries.Post("/create-order", inquiryHandler.CreateOrder)
	inquiries.Post("/verify-payment", inquiryHandler.VerifyPayment)
	inquiries.Post("/verify-payment-simple", inquiryHandler.VerifyPaymentSimple)
	inquiries.Get("/", authMiddleware.RequireAdmin(), inquiryHandler.ListInquiries)
	inquiries.Patch("/:id/status", authMiddleware.RequireAdmin(), inquiryHandler.UpdateStatus)
}
