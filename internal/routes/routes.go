package routes

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/config"
	"github.com/h-ogasawara/GolfSchoolBack/internal/handlers"
	"github.com/h-ogasawara/GolfSchoolBack/internal/middleware"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, log *slog.Logger) error {
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lineEventRepo := repository.NewLineEventRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	var notifier *services.LineBotNotifier
	if cfg.LineChannelSecret != "" && cfg.LineChannelToken != "" {
		var err error
		notifier, err = services.NewLineBotNotifier(cfg.LineChannelSecret, cfg.LineChannelToken)
		if err != nil {
			return err
		}
	}
	var lineNotifier services.LineNotifier
	if notifier != nil {
		lineNotifier = notifier
	}

	tokenService := services.NewActivationTokenService(cfg.ActivationSecret)
	bookingService := services.NewBookingService(db, bookingRepo, ledgerRepo, userRepo, lineNotifier, log)
	paymentService := services.NewPaymentService(db, paymentRepo, userRepo, courseRepo, lineNotifier, log)
	activationService := services.NewActivationService(db, userRepo, lineEventRepo, tokenService, log)
	pendingService := services.NewPendingIdentityService(lineEventRepo, userRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	studentHandler := handlers.NewStudentHandler(userRepo, ledgerRepo, activationService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, storageService)
	courseHandler := handlers.NewCourseHandler(courseRepo)
	activationHandler := handlers.NewActivationHandler(activationService)
	pendingHandler := handlers.NewPendingHandler(pendingService)
	webhookHandler := handlers.NewLineWebhookHandler(cfg.LineChannelSecret, lineEventRepo, notifier, log)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// Portal routes: unauthenticated, self-scoped by LINE identity.
	api.Post("/activate", activationHandler.Activate)
	api.Post("/portal/session", activationHandler.PortalSession)
	api.Post("/line/webhook", webhookHandler.HandleWebhook)
	api.Post("/payments", paymentHandler.SubmitPayment)
	api.Post("/payments/receipt", paymentHandler.UploadReceipt)
	api.Get("/courses", courseHandler.ListActiveCourses)

	staff := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))
	ownerOnly := middleware.RoleRequired(models.RoleOwner)

	students := staff.Group("/students")
	students.Post("", studentHandler.CreateStudent)
	students.Get("", studentHandler.ListStudents)
	students.Get("/:id", studentHandler.GetStudent)
	students.Put("/:id", studentHandler.UpdateStudent)
	students.Get("/:id/ledger", studentHandler.GetLedger)
	students.Post("/:id/activation-code", studentHandler.IssueActivationCode)
	students.Post("/:id/line-links", studentHandler.LinkLine)
	students.Delete("/:id/line-links/:lineUserId", studentHandler.UnlinkLine)

	staff.Get("/coaches", studentHandler.ListCoaches)
	staff.Get("/line/pending", pendingHandler.ListUnlinked)

	bookings := staff.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/complete", bookingHandler.CompleteBooking)
	bookings.Post("/:id/cancel", ownerOnly, bookingHandler.CancelBooking)
	bookings.Put("/:id/paid-status", ownerOnly, bookingHandler.SetPaidStatus)

	payments := staff.Group("/payments")
	payments.Post("", paymentHandler.SubmitPayment)
	payments.Get("", paymentHandler.ListPayments)
	payments.Get("/:id", paymentHandler.GetPayment)
	payments.Post("/:id/approve", ownerOnly, paymentHandler.ApprovePayment)
	payments.Post("/:id/reject", ownerOnly, paymentHandler.RejectPayment)

	courses := staff.Group("/courses")
	courses.Get("", courseHandler.ListCourses)
	courses.Post("", ownerOnly, courseHandler.CreateCourse)
	courses.Put("/:id", ownerOnly, courseHandler.UpdateCourse)

	return nil
}
