package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/luxewin/raffle-api/internal/helpers"
	"github.com/luxewin/raffle-api/internal/middleware"
	"github.com/luxewin/raffle-api/internal/services"
)

type RaffleRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	TicketPrice  int64     `json:"ticket_price" binding:"required,min=0"` // cents
	TotalTickets int       `json:"total_tickets" binding:"required,min=1"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
}

type RaffleUpdateRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	TicketPrice  *int64     `json:"ticket_price"`
	TotalTickets *int       `json:"total_tickets"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	IsActive     *bool      `json:"is_active"`
}

func CreateRaffle(c *gin.Context) {
	var req RaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	raffle, err := svc.CreateRaffle(c.Request.Context(), services.RaffleInput{
		Title:        req.Title,
		Description:  req.Description,
		TicketPrice:  req.TicketPrice,
		TotalTickets: req.TotalTickets,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, raffle)
}

func UpdateRaffle(c *gin.Context) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	var req RaffleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	raffle, err := svc.UpdateRaffle(c.Request.Context(), raffleID, services.RaffleUpdate{
		Title:        req.Title,
		Description:  req.Description,
		TicketPrice:  req.TicketPrice,
		TotalTickets: req.TotalTickets,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     req.IsActive,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffle)
}

func DeleteRaffle(c *gin.Context) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	if err := svc.DeleteRaffle(c.Request.Context(), raffleID); err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func GetRaffle(c *gin.Context) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	raffle, err := svc.GetRaffle(c.Request.Context(), raffleID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffle)
}

func ListRaffles(c *gin.Context) {
	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	activeOnly := c.Query("active_only") == "true"
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	raffles, err := svc.ListRaffles(c.Request.Context(), activeOnly, skip, limit)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffles)
}

func SelectRaffleWinner(c *gin.Context) {
	raffleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	winnerID, err := svc.SelectWinner(c.Request.Context(), raffleID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"raffle_id": raffleID,
		"winner_id": winnerID,
	})
}
