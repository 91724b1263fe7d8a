package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rcoelho/event-staffing-api/pkg/importer"
)

// ValidateRows handles a stateless dry-run validation request: raw rows in,
// classified outcomes out. Nothing is persisted and no session is needed.
func (h *Handler) ValidateRows(c *gin.Context) {
	var req struct {
		Rows              []map[string]string `json:"rows"`
		ExistingDocuments []string            `json:"existing_documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(req.Rows) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one row is required",
		})
		return
	}

	rows := make([]importer.Row, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = importer.Row(r)
	}

	parser := importer.NewParser(rows, req.ExistingDocuments)
	outcomes := parser.ParseAll()
	counts := parser.Counts()

	h.RecordUsage(c, counts.Total, 0)

	c.JSON(http.StatusOK, gin.H{
		"valid":    counts.Invalid == 0,
		"counts":   counts,
		"outcomes": outcomes,
	})
}
