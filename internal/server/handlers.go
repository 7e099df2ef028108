package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/diskexplorer/internal/scanner"
)

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	Root                   string   `json:"root" binding:"required"`
	ExcludeDirs            []string `json:"exclude_dirs"`
	ExcludePatterns        []string `json:"exclude_patterns"`
	IncludeHash            *bool    `json:"include_hash"`
	GenerateVideoArtifacts bool     `json:"generate_video_artifacts"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Root    string                `json:"root" binding:"required"`
	Filters scanner.SearchFilters `json:"filters"`
}

func (s *Server) startScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	includeHash := true
	if req.IncludeHash != nil {
		includeHash = *req.IncludeHash
	}

	opts := scanner.ScanOptions{
		ExcludeDirs:            req.ExcludeDirs,
		ExcludePatterns:        req.ExcludePatterns,
		IncludeHash:            includeHash,
		GenerateVideoArtifacts: req.GenerateVideoArtifacts,
	}

	// The scan outlives this request; a context tied to it would cancel
	// every ffprobe/ffmpeg call as soon as the 202 is written.
	sessionID, err := s.scanner.StartScan(context.WithoutCancel(c.Request.Context()), req.Root, opts)
	if err != nil {
		if errors.Is(err, scanner.ErrScanInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"session_id": sessionID})
}

func (s *Server) getProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"progress": s.scanner.Progress(),
		"stale":    s.scanner.ResultsStale(),
	})
}

func (s *Server) getResults(c *gin.Context) {
	records, err := s.scanner.Results()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) getInsights(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root query parameter is required"})
		return
	}

	insights, err := s.scanner.GetInsights(c.Request.Context(), root)
	if err != nil {
		respondScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (s *Server) getDuplicates(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root query parameter is required"})
		return
	}

	duplicates, err := s.scanner.FindDuplicates(c.Request.Context(), root)
	if err != nil {
		respondScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, duplicates)
}

func (s *Server) getAgingFiles(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root query parameter is required"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "180"))
	if err != nil || days < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days parameter"})
		return
	}
	mode := c.DefaultQuery("mode", scanner.AgingByModified)

	aging, err := s.scanner.FindAgingFiles(c.Request.Context(), root, days, mode)
	if err != nil {
		respondScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, aging)
}

func (s *Server) search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, outputFile, err := s.scanner.Search(c.Request.Context(), req.Root, req.Filters)
	if err != nil {
		respondScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":     results,
		"result_file": outputFile,
	})
}

func (s *Server) deleteFiles(c *gin.Context) {
	var req struct {
		Files     []string `json:"files" binding:"required"`
		Permanent bool     `json:"permanent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.fileOps.DeleteFiles(req.Files, req.Permanent))
}

func (s *Server) moveFiles(c *gin.Context) {
	var req struct {
		Files           []string `json:"files" binding:"required"`
		TargetDirectory string   `json:"target_directory" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.fileOps.MoveFiles(req.Files, req.TargetDirectory))
}

func (s *Server) renameFile(c *gin.Context) {
	var req struct {
		FilePath string `json:"file_path" binding:"required"`
		NewName  string `json:"new_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newPath, err := s.fileOps.RenameFile(req.FilePath, req.NewName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_path": newPath})
}

// respondScanError maps engine errors to HTTP statuses.
func respondScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scanner.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scanner.ErrNotADirectory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
