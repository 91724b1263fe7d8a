package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rcoelho/event-staffing-api/pkg/models"
	"github.com/rcoelho/event-staffing-api/pkg/pipeline"
	"github.com/rcoelho/event-staffing-api/pkg/spreadsheet"
)

// CreatePipeline opens a new import session for an event
func (h *Handler) CreatePipeline(c *gin.Context) {
	var req struct {
		EventID uint `json:"event_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.EventID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id is required"})
		return
	}

	p := pipeline.New(req.EventID, h.Store, h.Log)

	h.mu.Lock()
	h.pipelines[p.ID().String()] = p
	h.mu.Unlock()

	c.JSON(http.StatusCreated, p.Snapshot())
}

// GetPipeline returns the full state snapshot of a session
func (h *Handler) GetPipeline(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

// DeletePipeline discards a session and all its in-memory state
func (h *Handler) DeletePipeline(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	_, ok := h.pipelines[id]
	delete(h.pipelines, id)
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "pipeline not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pipeline discarded"})
}

// SelectShifts sets the selected shifts for a session
func (h *Handler) SelectShifts(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Shifts []string `json:"shifts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := p.SelectShifts(req.Shifts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

// UploadDataset accepts a spreadsheet (.xlsx or .csv) and stores the parsed
// rows in the session
func (h *Handler) UploadDataset(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	rows, err := spreadsheet.Read(fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := p.AcceptDataset(rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.RecordUsage(c, len(rows), 0)
	c.JSON(http.StatusOK, p.Snapshot())
}

// AdvancePipeline moves the session one stage forward
func (h *Handler) AdvancePipeline(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	stage, err := p.Advance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "stage": stage.String()})
		return
	}

	if stage == pipeline.StageComplete {
		summary := p.Summary()
		h.RecordUsage(c, 0, summary.SuccessCount)
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

// BackPipeline moves the session one stage backward
func (h *Handler) BackPipeline(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	if _, err := p.Back(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

// StartCreation launches the entity creation run
func (h *Handler) StartCreation(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Colors          map[string]string `json:"colors"`
		CredentialPause int               `json:"credential_pause_ms"`
		CompanyPause    int               `json:"company_pause_ms"`
	}
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	if req.CredentialPause > 0 || req.CompanyPause > 0 {
		cfg := models.DefaultCreationConfig()
		if req.CredentialPause > 0 {
			cfg.CredentialPause = time.Duration(req.CredentialPause) * time.Millisecond
		}
		if req.CompanyPause > 0 {
			cfg.CompanyPause = time.Duration(req.CompanyPause) * time.Millisecond
		}
		if err := p.SetCreationConfig(cfg); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}

	// The run outlives the request
	if err := p.StartCreation(context.Background(), req.Colors); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, p.Snapshot())
}

// CancelCreation requests a cooperative stop of the running creation queue
func (h *Handler) CancelCreation(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}
	if err := p.CancelCreation(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cancellation requested"})
}

// VerifyPipeline refreshes the reference stores and reports residual
// missing references
func (h *Handler) VerifyPipeline(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	residual, err := p.RunVerification(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"residual_missing": residual,
		"resolved":         len(residual) == 0,
	})
}

// StartImport launches the batch import run
func (h *Handler) StartImport(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		BatchSize           int `json:"batch_size"`
		PauseBetweenItems   int `json:"pause_between_items_ms"`
		PauseBetweenBatches int `json:"pause_between_batches_ms"`
		MaxRetries          int `json:"max_retries"`
	}
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	if req.BatchSize > 0 || req.PauseBetweenItems > 0 || req.PauseBetweenBatches > 0 || req.MaxRetries > 0 {
		cfg := models.DefaultBatchConfig()
		if req.BatchSize > 0 {
			cfg.BatchSize = req.BatchSize
		}
		if req.PauseBetweenItems > 0 {
			cfg.PauseBetweenItems = time.Duration(req.PauseBetweenItems) * time.Millisecond
		}
		if req.PauseBetweenBatches > 0 {
			cfg.PauseBetweenBatches = time.Duration(req.PauseBetweenBatches) * time.Millisecond
		}
		if req.MaxRetries > 0 {
			cfg.MaxRetries = req.MaxRetries
		}
		if err := p.SetBatchConfig(cfg); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}

	// The run outlives the request
	if err := p.StartImport(context.Background()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, p.Snapshot())
}

// GetSummary returns the final import summary
func (h *Handler) GetSummary(c *gin.Context) {
	p, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.Summary())
}

// session resolves the pipeline for the :id path parameter, writing a 404
// when it does not exist
func (h *Handler) session(c *gin.Context) (*pipeline.Pipeline, bool) {
	id := c.Param("id")
	h.mu.RLock()
	p, ok := h.pipelines[id]
	h.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "pipeline not found"})
		return nil, false
	}
	return p, true
}
