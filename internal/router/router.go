package router

import (
	"net/http"
	"time"

	"ajopay/config"
	"ajopay/internal/domain"
	"ajopay/internal/handler"
	"ajopay/internal/middleware"
	"ajopay/internal/repository"
	"ajopay/internal/service"
	"ajopay/internal/ws"
	"ajopay/pkg/cloudinary"
	"ajopay/pkg/paystack"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine.
// The reconciliation service is returned so main can schedule it.
func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) (*gin.Engine, *service.ReconciliationService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	hub := ws.NewHub()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	contribRepo := repository.NewContributionRepository(db)
	commRepo := repository.NewCommissionRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	topupRepo := repository.NewTopupRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	// Services
	notifSvc := service.NewNotificationService(notifRepo, hub)
	authSvc := service.NewAuthService(cfg, userRepo)
	transferSvc := service.NewTransferService(db, &cfg.Savings, userRepo, walletRepo, txRepo, notifSvc, hub)
	commissionSvc := service.NewCommissionService(db, &cfg.Savings, settingRepo, commRepo, walletRepo, txRepo, notifSvc)
	referralSvc := service.NewReferralService(referralRepo, walletRepo, txRepo, settingRepo, notifSvc, cfg.Savings.ReferrerBonusKobo, cfg.Savings.ReferredBonusKobo)
	topupSvc := service.NewTopupService(db, &cfg.Savings, userRepo, walletRepo, txRepo, topupRepo, contribRepo, subRepo, notifSvc, hub)
	reconcileSvc := service.NewReconciliationService(walletRepo, txRepo, userRepo, notifSvc)

	// Handlers
	authH := handler.NewAuthHandler(authSvc, walletRepo, referralRepo, referralSvc, subRepo, auditRepo)
	oauthH := handler.NewGoogleOAuthHandler(&cfg.OAuth, authSvc)
	meH := handler.NewMeHandler(userRepo, referralRepo, cloud)
	walletH := handler.NewWalletHandler(walletRepo, txRepo, transferSvc)
	webhookH := handler.NewPaystackWebhookHandler(cfg.Paystack.SecretKey, topupSvc)
	verifyH := handler.NewPaymentVerifyHandler(paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey), topupSvc)
	contribH := handler.NewContributionHandler(db, contribRepo, walletRepo, txRepo, userRepo, commissionSvc, notifSvc, cloud, hub)
	customerH := handler.NewCustomerHandler(walletRepo, contribRepo, subRepo)
	clusterH := handler.NewClusterHandler(clusterRepo, userRepo, contribRepo, commRepo)
	commissionH := handler.NewCommissionHandler(commRepo, commissionSvc)
	withdrawalH := handler.NewWithdrawalHandler(db, withdrawalRepo, walletRepo, txRepo, notifSvc, hub)
	notifH := handler.NewNotificationHandler(notifRepo)
	adminH := handler.NewAdminHandler(userRepo, auditRepo, settingRepo, reconcileSvc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	// Realtime change feed
	r.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, hub))

	api := r.Group("/api/v1")

	// Provider callbacks are signed, not JWT-authenticated.
	api.POST("/payments/webhook", webhookH.Handle)

	ipLimiter := middleware.NewLimiter(30, time.Minute)
	credLimiter := middleware.NewLimiter(10, time.Minute)
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(ipLimiter))
	{
		authGroup.POST("/register", middleware.RateLimitByCredential(credLimiter, "email", "phone"), authH.Register)
		authGroup.POST("/login", middleware.RateLimitByCredential(credLimiter, "email"), authH.Login)
		authGroup.POST("/refresh", authH.Refresh)
		authGroup.GET("/google", oauthH.Redirect)
		authGroup.GET("/google/callback", oauthH.Callback)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(&cfg.JWT))
	{
		protected.POST("/auth/logout", authH.Logout)
		protected.POST("/auth/change-password", authH.ChangePassword)

		protected.GET("/me", meH.Get)
		protected.PATCH("/me", meH.Update)
		protected.PATCH("/me/settings", meH.UpdateSettings)
		protected.POST("/me/avatar", meH.UploadAvatar)

		protected.GET("/wallet", walletH.GetBalance)
		protected.GET("/wallet/transactions", walletH.GetTransactions)
		protected.POST("/wallet/send", walletH.Send)
		protected.POST("/payments/verify", verifyH.Verify)

		protected.GET("/contributions", contribH.List)
		protected.POST("/contributions", contribH.Mark)

		protected.GET("/customer/overview", customerH.Overview)
		protected.POST("/clusters/join", clusterH.Join)

		protected.GET("/withdrawals", withdrawalH.List)
		protected.POST("/withdrawals", withdrawalH.Request)

		protected.GET("/notifications", notifH.List)
		protected.POST("/notifications/:id/read", notifH.MarkRead)
		protected.POST("/notifications/read-all", notifH.MarkAllRead)
	}

	agent := api.Group("/agent")
	agent.Use(middleware.AuthRequired(&cfg.JWT), middleware.RequireRole(domain.RoleAgent, domain.RoleAdmin))
	{
		agent.GET("/overview", clusterH.AgentOverview)
		agent.POST("/clusters", clusterH.Create)
		agent.GET("/clusters", clusterH.List)
		agent.GET("/clusters/:id/members", clusterH.Members)
		agent.POST("/collections", contribH.RecordCash)
		agent.GET("/collections", contribH.ListCollections)
		agent.GET("/commissions", commissionH.Summary)
		agent.POST("/commissions/payout", commissionH.Payout)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
	{
		admin.GET("/users", adminH.ListUsers)
		admin.GET("/audit-logs", adminH.ListAuditLogs)
		admin.GET("/settings", adminH.GetSettings)
		admin.PUT("/settings", adminH.UpdateSettings)
		admin.GET("/withdrawals", withdrawalH.ListPending)
		admin.PATCH("/withdrawals/:id", withdrawalH.Settle)
		admin.POST("/reconcile", adminH.Reconcile)
	}

	return r, reconcileSvc
}
