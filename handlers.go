package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func (ws *WebServer) observeLink(c *gin.Context) {
	var req ObserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := strings.ToLower(req.Source)
	if !isValidSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source"})
		return
	}

	result, err := ws.tracker.ObserveLink(source, req.Link)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ws *WebServer) recordObservation(c *gin.Context) {
	var req SuppliedObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := strings.ToLower(req.Source)
	if !isValidSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source"})
		return
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	result, err := ws.tracker.RecordSupplied(source, req.Name, req.Link, req.Price, req.Date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// observeFlipkartByName resolves a product name to its first Flipkart
// search hit and records today's observation for it.
func (ws *WebServer) observeFlipkartByName(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := ws.scraper.FindFlipkartLink(req.Name)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if link == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No Flipkart product found for that name"})
		return
	}

	result, err := ws.tracker.ObserveLink(SourceFlipkart, link)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ws *WebServer) getProducts(c *gin.Context) {
	source := strings.ToLower(c.Query("source"))
	if source != "" && !isValidSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source"})
		return
	}

	products, err := ws.tracker.database.GetProducts(source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (ws *WebServer) getHistory(c *gin.Context) {
	productID, ok := parseID(c)
	if !ok {
		return
	}

	product, err := ws.tracker.database.GetProduct(productID)
	if err != nil {
		respondLookupError(c, err)
		return
	}

	history, err := ws.tracker.database.GetHistory(product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"count":   len(history),
		"history": history,
	})
}

func (ws *WebServer) getPrediction(c *gin.Context) {
	productID, ok := parseID(c)
	if !ok {
		return
	}

	product, err := ws.tracker.database.GetProduct(productID)
	if err != nil {
		respondLookupError(c, err)
		return
	}

	score, note := ws.tracker.scoreOrSentinel(product.ID)
	c.JSON(http.StatusOK, PredictionResponse{
		ProductID:  product.ID,
		Name:       product.Name,
		Prediction: score,
		Note:       note,
	})
}

func (ws *WebServer) searchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	results, err := ws.tracker.database.SearchProducts(query, 15)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

func (ws *WebServer) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	}

	if _, err := ws.tracker.database.GetUserByEmail(email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already used"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user, err := ws.tracker.database.CreateUser(email, string(hash))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign up successful",
		"email":   user.Email,
	})
}

func (ws *WebServer) getWatchlist(c *gin.Context) {
	user, source, ok := ws.watchlistParams(c, c.Query("email"), c.Query("source"))
	if !ok {
		return
	}

	products, err := ws.tracker.database.Watchlist(user.ID, source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":    user.Email,
		"source":   source,
		"products": products,
	})
}

func (ws *WebServer) addWatchlistEntry(c *gin.Context) {
	var req WatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, source, ok := ws.watchlistParams(c, req.Email, req.Source)
	if !ok {
		return
	}

	if _, err := ws.tracker.database.GetProduct(req.ProductID); err != nil {
		respondLookupError(c, err)
		return
	}

	if err := ws.tracker.database.AddWatch(user.ID, source, req.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product added to watchlist"})
}

func (ws *WebServer) removeWatchlistEntry(c *gin.Context) {
	var req WatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, source, ok := ws.watchlistParams(c, req.Email, req.Source)
	if !ok {
		return
	}

	err := ws.tracker.database.RemoveWatch(user.ID, source, req.ProductID)
	if errors.Is(err, ErrNotFound) {
		// Soft failure: report it, the request still succeeds
		c.JSON(http.StatusOK, gin.H{
			"message": "Product was not in watchlist",
			"removed": false,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from watchlist",
		"removed": true,
	})
}

func (ws *WebServer) runSweep(c *gin.Context) {
	sent, err := ws.notifier.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		Success:           true,
		NotificationsSent: sent,
	})
}

func (ws *WebServer) retrainModel(c *gin.Context) {
	err := ws.tracker.Retrain()
	if errors.Is(err, ErrInsufficientData) {
		c.JSON(http.StatusConflict, gin.H{"error": "No qualifying products to train on"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Model retrained"})
}

func (ws *WebServer) exportHistory(c *gin.Context) {
	source := strings.ToLower(c.Query("source"))
	if !isValidSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source"})
		return
	}

	f, err := ExportHistory(ws.tracker.database, source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Render fully before touching the response, so a render failure
	// stays a clean 500 instead of trailing a partial stream
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_history.xlsx", source))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// watchlistParams resolves the user and validates the source for the
// watchlist handlers.
func (ws *WebServer) watchlistParams(c *gin.Context, email, source string) (*User, string, bool) {
	source = strings.ToLower(source)
	if !isValidSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid source"})
		return nil, "", false
	}

	user, err := ws.tracker.database.GetUserByEmail(email)
	if err != nil {
		respondLookupError(c, err)
		return nil, "", false
	}
	return user, source, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return 0, false
	}
	return uint(id), true
}

func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
