package server

import (
	"github.com/gin-gonic/gin"
	"github.com/mantonx/diskexplorer/internal/config"
	"github.com/mantonx/diskexplorer/internal/fileops"
	"github.com/mantonx/diskexplorer/internal/scanner"
)

// Server adapts HTTP requests to the scan engine. Handlers contain no
// engine logic; they translate parameters and status codes only.
type Server struct {
	cfg     *config.Config
	scanner *scanner.FileScanner
	fileOps *fileops.Operations
}

// New creates the HTTP server around an orchestrator.
func New(cfg *config.Config, fs *scanner.FileScanner) *Server {
	return &Server{
		cfg:     cfg,
		scanner: fs,
		fileOps: fileops.New(cfg.DataDir),
	}
}

// SetupRouter builds the gin engine with all API routes registered.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/scan", s.startScan)
		api.GET("/scan/progress", s.getProgress)
		api.GET("/scan/progress/ws", s.progressSocket)
		api.GET("/scan/results", s.getResults)

		api.GET("/insights", s.getInsights)
		api.GET("/duplicates", s.getDuplicates)
		api.GET("/aging", s.getAgingFiles)
		api.POST("/search", s.search)

		api.POST("/files/delete", s.deleteFiles)
		api.POST("/files/move", s.moveFiles)
		api.POST("/files/rename", s.renameFile)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	return router
}
