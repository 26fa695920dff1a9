package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/xendit/xendit-go/v6"

	"github.com/luxewin/raffle-api/internal/services"
)

func RaffleServiceMiddleware(svc *services.RaffleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("raffle_service", svc)
		c.Next()
	}
}

func GetRaffleService(c *gin.Context) *services.RaffleService {
	svc, exists := c.Get("raffle_service")
	if !exists {
		return nil
	}
	return svc.(*services.RaffleService)
}

func EventsMiddleware(emitter services.EventEmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("events", emitter)
		c.Next()
	}
}

func GetEmitter(c *gin.Context) services.EventEmitter {
	emitter, exists := c.Get("events")
	if !exists {
		return nil
	}
	return emitter.(services.EventEmitter)
}

func XenditMiddleware(xenditClient *xendit.APIClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("xendit_client", xenditClient)
		c.Next()
	}
}

func GetXenditClient(c *gin.Context) *xendit.APIClient {
	client, exists := c.Get("xendit_client")
	if !exists {
		return nil
	}
	return client.(*xendit.APIClient)
}
