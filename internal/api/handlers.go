package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openspace/seating-engine/internal/db"
	"github.com/openspace/seating-engine/internal/seating"
	"github.com/openspace/seating-engine/internal/solver"
	"github.com/openspace/seating-engine/internal/spreadsheet"
	"github.com/openspace/seating-engine/pkg/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type APIHandler struct {
	dbStore *db.PostgresStore
	wsHub   *Hub
	budget  solver.Options
}

// handleCreateArrangement ingests a roster workbook, runs the partition
// engine, and stores the finished plan.
// POST /api/v1/arrangements (multipart: file=<xlsx>, capacity=<int>)
func (h *APIHandler) handleCreateArrangement(c *gin.Context) {
	capacity, err := strconv.Atoi(c.DefaultPostForm("capacity", "4"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be an integer"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing workbook upload. Expected multipart field 'file'"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The uploaded file is not an Excel workbook (.xlsx)"})
		return
	}

	upload, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload", "details": err.Error()})
		return
	}
	defer upload.Close()
	workbook, err := io.ReadAll(upload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload", "details": err.Error()})
		return
	}

	roster, err := spreadsheet.ParseRoster(bytes.NewReader(workbook))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workbook", "details": err.Error()})
		return
	}

	result, err := solver.Partition(len(roster.Names), capacity, roster.Compatible, roster.Incompatible, h.budget)
	var contradiction *solver.Contradiction
	switch {
	case errors.As(err, &contradiction):
		h.notify(models.ArrangementEvent{Type: "arrangement_rejected", Status: "contradiction", Reason: contradiction.Error()})
		c.JSON(http.StatusUnprocessableEntity, contradictionPayload(contradiction, roster.Names))
		return
	case errors.Is(err, solver.ErrConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid configuration", "details": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Solve failed", "details": err.Error()})
		return
	}

	if result.Status != solver.StatusSatisfiable {
		h.notify(models.ArrangementEvent{Type: "arrangement_rejected", Status: result.Status.String(), Reason: result.Reason})
		payload := gin.H{"status": result.Status.String(), "reason": result.Reason}
		if result.Status == solver.StatusUnknown {
			payload["hint"] = "Retry with a larger SOLVER_MAX_NODES / SOLVER_TIMEOUT_MS budget"
		}
		c.JSON(http.StatusUnprocessableEntity, payload)
		return
	}

	open := seating.NewOpenspace(len(result.Groups), capacity)
	if err := open.Assign(result.Groups, roster.Names); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to lay out seating", "details": err.Error()})
		return
	}
	plan := open.Plan()

	sessionID := uuid.NewString()
	if h.dbStore != nil {
		if err := h.dbStore.SaveSession(c.Request.Context(), sessionID, workbook, plan, result.Status.String()); err != nil {
			log.Printf("Failed to save seating session %s: %v", sessionID, err)
		}
	}

	h.notify(models.ArrangementEvent{
		Type:      "arrangement_complete",
		SessionID: sessionID,
		Status:    result.Status.String(),
		Tables:    len(plan),
	})

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"status":    result.Status.String(),
		"plan":      plan,
	})
}

// handleListArrangements returns recent sessions.
// GET /api/v1/arrangements?page=1&limit=50
func (h *APIHandler) handleListArrangements(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, totalCount, err := h.dbStore.ListSessions(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       sessions,
		"totalCount": totalCount,
		"page":       page,
		"limit":      limit,
	})
}

// handleGetArrangement returns the stored plan for one session.
// GET /api/v1/arrangements/:id
func (h *APIHandler) handleGetArrangement(c *gin.Context) {
	record, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleDownloadArrangement streams the plan as an .xlsx attachment,
// regenerated from the stored JSON so nothing lives on disk.
// GET /api/v1/arrangements/:id/download
func (h *APIHandler) handleDownloadArrangement(c *gin.Context) {
	record, ok := h.loadSession(c)
	if !ok {
		return
	}

	data, err := spreadsheet.PlanToXLSX(record.Plan)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render workbook", "details": err.Error()})
		return
	}

	filename := fmt.Sprintf("seating_arrangement_%s.xlsx", record.SessionID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// handleDeleteArrangement removes a stored session.
// DELETE /api/v1/arrangements/:id
func (h *APIHandler) handleDeleteArrangement(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}

	err := h.dbStore.DeleteSession(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No seating arrangement available"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "sessionId": c.Param("id")})
}

// handleHealth returns engine status and capabilities for service discovery.
func (h *APIHandler) handleHealth(c *gin.Context) {
	dbConnected := h.dbStore != nil
	if dbConnected {
		if err := h.dbStore.Ping(c.Request.Context()); err != nil {
			dbConnected = false
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "Openspace Seating Engine v1.0",
		"capabilities": gin.H{
			"partition_solver":   true,
			"symmetry_breaking":  true,
			"workbook_ingestion": true,
			"event_stream":       true,
		},
		"solverBudget": gin.H{
			"maxNodes":  h.budget.MaxNodes,
			"timeoutMs": h.budget.Timeout.Milliseconds(),
		},
		"dbConnected": dbConnected,
	})
}

func (h *APIHandler) loadSession(c *gin.Context) (*models.SessionRecord, bool) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return nil, false
	}
	record, err := h.dbStore.GetSession(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No seating arrangement available"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session", "details": err.Error()})
		return nil, false
	}
	return record, true
}

// notify publishes an arrangement event to every websocket subscriber.
func (h *APIHandler) notify(event models.ArrangementEvent) {
	if h.wsHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode arrangement event: %v", err)
		return
	}
	h.wsHub.Broadcast(payload)
}

// contradictionPayload shapes an analytic rejection so the client can name
// the offending people, not just show a generic failure.
func contradictionPayload(c *solver.Contradiction, names []string) gin.H {
	payload := gin.H{
		"status": "contradiction",
		"reason": c.Error(),
	}
	name := func(id int) string {
		if id >= 0 && id < len(names) {
			return names[id]
		}
		return strconv.Itoa(id)
	}
	switch c.Kind {
	case solver.ContradictionBothRelations:
		payload["kind"] = "pair_in_both_relations"
		payload["pair"] = []string{name(c.PersonA), name(c.PersonB)}
	case solver.ContradictionConflictInCluster:
		payload["kind"] = "incompatible_within_cluster"
		payload["pair"] = []string{name(c.PersonA), name(c.PersonB)}
	case solver.ContradictionClusterOverflow:
		payload["kind"] = "cluster_exceeds_capacity"
		members := make([]string, 0, len(c.Cluster))
		for _, id := range c.Cluster {
			members = append(members, name(id))
		}
		payload["cluster"] = members
	}
	return payload
}
