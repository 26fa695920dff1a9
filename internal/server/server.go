package server

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/luxewin/raffle-api/config"
	"github.com/luxewin/raffle-api/internal/handlers"
	"github.com/luxewin/raffle-api/internal/middleware"
	"github.com/luxewin/raffle-api/internal/notifications"
	"github.com/luxewin/raffle-api/internal/payments"
	"github.com/luxewin/raffle-api/internal/services"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	xenditCfg, err := config.LoadXenditConfig()
	if err != nil {
		return fmt.Errorf("failed to load xendit config: %v", err)
	}
	xenditClient, err := config.InitXenditClient(xenditCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize xendit client: %v", err)
	}

	emitter := notifications.NewNovuEmitter(os.Getenv("NOVU_API_KEY"), os.Getenv("NOVU_API_URL"))
	verifier := payments.NewXenditVerifier(xenditClient)
	raffleService := services.NewRaffleService(db, verifier, emitter)

	r := gin.Default()

	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.EventsMiddleware(emitter))
	r.Use(middleware.RaffleServiceMiddleware(raffleService))
	r.Use(middleware.XenditMiddleware(xenditClient))

	setupRoutes(r)

	// Notify participants of raffles entering their last day.
	c := cron.New()
	c.AddFunc("@every 10m", func() {
		raffleService.SweepEndingSoon(context.Background())
	})
	c.Start()
	defer c.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine) {
	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/payments/webhook", handlers.PaymentWebhook)

		rafflePublic := public.Group("/raffles")
		{
			rafflePublic.GET("", handlers.ListRaffles)
			rafflePublic.GET("/:id", handlers.GetRaffle)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.POST("/payments/checkout", handlers.CreateCheckout)

		purchases := protected.Group("/purchases")
		{
			purchases.POST("", handlers.SubmitPurchase)
			purchases.GET("", handlers.ListPurchases)
			purchases.GET("/:id", handlers.GetPurchase)
			purchases.GET("/:id/qr", handlers.GenerateReceiptQR)
		}

		admin := protected.Group("/raffles")
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("", handlers.CreateRaffle)
			admin.PUT("/:id", handlers.UpdateRaffle)
			admin.DELETE("/:id", handlers.DeleteRaffle)
			admin.POST("/:id/winner", handlers.SelectRaffleWinner)
		}
	}
}
