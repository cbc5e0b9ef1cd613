package handlers

import (
	"nexadomus/internal/logger"
	"nexadomus/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log.OrNop()}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	// Live state stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerDeviceRoutes(api)
		h.registerSprinklerRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	// Body example: {"action":"set","parameters":{"brightness":"170"}}
	api.POST("/devices/:kind/command", h.sendCommand)
	api.GET("/devices", h.listDevices)
	api.POST("/status/refresh", h.refreshStatus)
	api.GET("/state", h.getState)
}

func (h *Handler) registerSprinklerRoutes(api *gin.RouterGroup) {
	sprinklers := api.Group("/sprinklers")
	{
		// Body example: {"minutes":5,"seconds":0}; empty body uses the stored manual duration
		sprinklers.POST("/on", h.sprinklersOn)
		sprinklers.POST("/off", h.sprinklersOff)
		sprinklers.GET("/timer", h.getTimer)
		sprinklers.GET("/schedule", h.getSchedule)
		sprinklers.PUT("/schedule", h.putSchedule)
		sprinklers.GET("/manual-duration", h.getManualDuration)
		sprinklers.PUT("/manual-duration", h.putManualDuration)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
