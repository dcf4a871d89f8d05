package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sliink/intelpipe/internal/api/docs"
	"github.com/sliink/intelpipe/internal/core"
	"github.com/sliink/intelpipe/internal/model"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// API represents the REST API for the intelligence pipeline
type API struct {
	core   *core.Core
	schema *model.Schema
	router *gin.Engine
	server *http.Server
	port   int
	host   string
}

// NewAPI creates a new API instance
// @title           IntelPipe API
// @version         1.0
// @description     API for controlling the threat intelligence pipeline

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
func NewAPI(c *core.Core, schema *model.Schema, port int, host string) *API {
	// Set up Swagger info
	docs.SwaggerInfo.Title = "IntelPipe API"
	docs.SwaggerInfo.Description = "API for controlling the threat intelligence pipeline"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", host, port)
	docs.SwaggerInfo.BasePath = ""
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Create router
	router := gin.Default()

	// Create API instance
	api := &API{
		core:   c,
		schema: schema,
		router: router,
		port:   port,
		host:   host,
	}

	// Set up routes
	api.setupRoutes()

	return api
}

// setupRoutes configures all the API routes
func (a *API) setupRoutes() {
	// Health check
	a.router.GET("/health", a.healthCheck)

	// Status endpoints
	a.router.GET("/status", a.getStatus)

	// Plugin management
	plugins := a.router.Group("/plugins")
	{
		plugins.GET("", a.getPlugins)
		plugins.GET("/:id", a.getPluginByID)
		plugins.POST("/:id/start", a.startPlugin)
		plugins.POST("/:id/stop", a.stopPlugin)
	}

	// Buffer management
	buffers := a.router.Group("/buffers")
	{
		buffers.GET("", a.getBuffers)
		buffers.GET("/:name", a.getBufferByName)
	}

	// Record operations
	records := a.router.Group("/records")
	{
		records.POST("/validate", a.validateRecord)
		records.POST("/hash", a.hashRecord)
	}

	// Configuration
	a.router.GET("/config", a.getConfig)
	a.router.PUT("/config", a.updateConfig)

	// Swagger documentation
	url := ginSwagger.URL("/swagger/doc.json")
	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))
}

// Start starts the API server
func (a *API) Start() error {
	addr := fmt.Sprintf("%s:%d", a.host, a.port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.router,
	}

	return a.server.ListenAndServe()
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Router exposes the underlying gin engine
func (a *API) Router() http.Handler {
	return a.router
}

// healthCheck handles GET /health
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         system
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

// getStatus handles GET /status
// @Summary      Get system status
// @Description  Get the status of the pipeline and all its components
// @Tags         system
// @Accept       json
// @Produce      json
// @Success      200  {object}  model.HealthStatus
// @Router       /status [get]
func (a *API) getStatus(c *gin.Context) {
	status := a.core.GetHealthMonitor().GetHealthStatus()
	c.JSON(http.StatusOK, status)
}

// getPlugins handles GET /plugins
// @Summary      Get all plugins
// @Description  Get information about all registered plugins
// @Tags         plugins
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /plugins [get]
func (a *API) getPlugins(c *gin.Context) {
	result := make(map[string]interface{})
	for _, p := range a.core.GetRegistry().GetAllPlugins() {
		result[p.ID()] = pluginInfo(p)
	}

	c.JSON(http.StatusOK, result)
}

// getPluginByID handles GET /plugins/:id
// @Summary      Get plugin by ID
// @Description  Get information about a specific plugin
// @Tags         plugins
// @Accept       json
// @Produce      json
// @Param        id    path    string  true  "Plugin ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /plugins/{id} [get]
func (a *API) getPluginByID(c *gin.Context) {
	p, exists := a.core.GetRegistry().GetPlugin(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plugin not found"})
		return
	}

	c.JSON(http.StatusOK, pluginInfo(p))
}

// startPlugin handles POST /plugins/:id/start
// @Summary      Start a plugin
// @Description  Start a specific plugin
// @Tags         plugins
// @Accept       json
// @Produce      json
// @Param        id    path    string  true  "Plugin ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /plugins/{id}/start [post]
func (a *API) startPlugin(c *gin.Context) {
	p, exists := a.core.GetRegistry().GetPlugin(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plugin not found"})
		return
	}

	if !p.Start() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Plugin failed to start"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Plugin started"})
}

// stopPlugin handles POST /plugins/:id/stop
// @Summary      Stop a plugin
// @Description  Stop a specific plugin
// @Tags         plugins
// @Accept       json
// @Produce      json
// @Param        id    path    string  true  "Plugin ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /plugins/{id}/stop [post]
func (a *API) stopPlugin(c *gin.Context) {
	p, exists := a.core.GetRegistry().GetPlugin(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plugin not found"})
		return
	}

	if !p.Stop() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Plugin failed to stop"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Plugin stopped"})
}

// getBuffers handles GET /buffers
// @Summary      Get all buffers
// @Description  Get the status of all output buffers
// @Tags         buffers
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]model.BufferStatus
// @Router       /buffers [get]
func (a *API) getBuffers(c *gin.Context) {
	c.JSON(http.StatusOK, a.core.GetBufferManager().GetBufferStatus())
}

// getBufferByName handles GET /buffers/:name
// @Summary      Get buffer by name
// @Description  Get the status of a specific output buffer
// @Tags         buffers
// @Accept       json
// @Produce      json
// @Param        name    path    string  true  "Buffer name"
// @Success      200  {object}  model.BufferStatus
// @Failure      404  {object}  map[string]string
// @Router       /buffers/{name} [get]
func (a *API) getBufferByName(c *gin.Context) {
	buffers := a.core.GetBufferManager().GetBufferStatus()

	if buffer, exists := buffers[c.Param("name")]; exists {
		c.JSON(http.StatusOK, buffer)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Buffer not found"})
}

// validateRecord handles POST /records/validate
// @Summary      Validate a record
// @Description  Reconstruct a record from its wire form, reporting the canonical result or the validation failure
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        record  body    map[string]interface{}  true  "Record fields with optional __type tag"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /records/validate [post]
func (a *API) validateRecord(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record format"})
		return
	}

	record, err := model.FromMap(fields, a.schema, model.KindEvent)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":  true,
		"record": record.ToDict(false, true),
	})
}

// hashRecord handles POST /records/hash
// @Summary      Hash a record
// @Description  Compute the canonical content hash of a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        request  body    HashRequest  true  "Record fields plus optional key filter"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /records/hash [post]
func (a *API) hashRecord(c *gin.Context) {
	var request HashRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	record, err := model.FromMap(request.Record, a.schema, model.KindEvent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := record.HashOpts(model.HashOptions{
		FilterKeys: request.FilterKeys,
		FilterMode: model.FilterMode(request.FilterMode),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hash": hash})
}

// HashRequest is the body of a record hash request
type HashRequest struct {
	Record     map[string]interface{} `json:"record" binding:"required"`
	FilterKeys []string               `json:"filter_keys"`
	FilterMode string                 `json:"filter_mode"`
}

// getConfig handles GET /config
// @Summary      Get configuration
// @Description  Get the current pipeline configuration
// @Tags         config
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /config [get]
func (a *API) getConfig(c *gin.Context) {
	config := a.core.GetConfigManager().GetConfig("", nil)
	c.JSON(http.StatusOK, config)
}

// updateConfig handles PUT /config
// @Summary      Update configuration
// @Description  Replace the pipeline configuration
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        config  body    map[string]interface{}  true  "New configuration"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /config [put]
func (a *API) updateConfig(c *gin.Context) {
	var newConfig map[string]interface{}
	if err := c.ShouldBindJSON(&newConfig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid configuration format"})
		return
	}

	if err := a.core.GetConfigManager().SetConfig("", newConfig); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Configuration updated"})
}

// pluginInfo renders a plugin as a plain mapping for API responses
func pluginInfo(p model.Plugin) map[string]interface{} {
	return map[string]interface{}{
		"id":     p.ID(),
		"name":   p.Name(),
		"type":   string(p.GetType()),
		"status": string(p.GetStatus()),
	}
}
