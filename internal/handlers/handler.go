package handlers

import (
	"net/http"

	"awareness_bell/internal/logger"
	"awareness_bell/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  http.Handler
}

// NewHandler constructs a new HTTP handler with dependencies. A nil metrics
// handler leaves /metrics unregistered.
func NewHandler(services *service.Service, log *logger.Logger, metrics http.Handler) *Handler {
	return &Handler{services: services, log: log, metrics: metrics}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Live state and notification feed, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.ownerMiddleware)
	{
		h.registerBellRoutes(api)
		h.registerQuoteRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerBellRoutes(api *gin.RouterGroup) {
	bell := api.Group("/bell")
	{
		bell.POST("/start", h.startBell)
		bell.POST("/stop", h.stopBell)
		bell.GET("/state", h.getState)
	}
}

func (h *Handler) registerQuoteRoutes(api *gin.RouterGroup) {
	quotes := api.Group("/quotes")
	{
		quotes.GET("/random", h.randomQuote)
		quotes.POST("/reload", h.reloadQuotes)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
