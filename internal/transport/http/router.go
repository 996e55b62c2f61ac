// Package deskhttp exposes the order console and trade form over HTTP for the
// desk's front-end clients.
package deskhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orderdesk/internal/console"
	"orderdesk/internal/model"
	"orderdesk/internal/submit"

	"github.com/gin-gonic/gin"
)

// AuditReader is the query side of the audit trail.
type AuditReader interface {
	List(ctx context.Context, limit int) ([]model.AuditRecord, error)
}

// Router exposes the desk API: snapshot reads, selection, mutations and the
// trade form.
type Router struct {
	Console *console.Console
	Submit  *submit.Service
	Audit   AuditReader
}

// NewRouter constructs the desk router.
func NewRouter(con *console.Console, sub *submit.Service, audit AuditReader) *Router {
	return &Router{Console: con, Submit: sub, Audit: audit}
}

// Register mounts the desk routes under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/orders", r.handleOrders)
	group.POST("/refresh", r.handleRefresh)
	group.POST("/visibility", r.handleVisibility)

	group.GET("/selection", r.handleSelection)
	group.POST("/selection/toggle", r.handleSelectionToggle)
	group.POST("/selection/clear", r.handleSelectionClear)

	group.POST("/cancel", r.handleCancel)
	group.POST("/modify/open", r.handleModifyOpen)
	group.POST("/modify", r.handleModify)

	group.GET("/clients", r.handleClients)
	group.GET("/groups", r.handleGroups)
	group.GET("/symbols", r.handleSymbols)

	group.GET("/draft", r.handleDraftGet)
	group.PUT("/draft", r.handleDraftPut)
	group.POST("/place", r.handlePlace)

	group.GET("/audit", r.handleAudit)
}

func (r *Router) handleOrders(c *gin.Context) {
	snap, updated := r.Console.Poller().Snapshot()
	resp := gin.H{
		"orders": snap,
		"busy":   r.Console.Poller().Busy(),
	}
	if !updated.IsZero() {
		resp["last_updated"] = updated.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) handleRefresh(c *gin.Context) {
	r.Console.Poller().Refresh()
	c.JSON(http.StatusOK, gin.H{"status": "refresh requested"})
}

func (r *Router) handleVisibility(c *gin.Context) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	r.Console.Poller().SetVisible(req.Visible)
	if req.Visible {
		// Coming back to a visible surface wants fresh rows right away.
		r.Console.Poller().Refresh()
	}
	c.JSON(http.StatusOK, gin.H{"visible": req.Visible})
}

func (r *Router) handleSelection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"keys": r.Console.Selection().Keys()})
}

func (r *Router) handleSelectionToggle(c *gin.Context) {
	var req struct {
		Key string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	r.Console.Selection().Toggle(req.Key)
	c.JSON(http.StatusOK, gin.H{
		"key":      req.Key,
		"selected": r.Console.Selection().IsSelected(req.Key),
	})
}

func (r *Router) handleSelectionClear(c *gin.Context) {
	r.Console.Selection().Clear()
	c.JSON(http.StatusOK, gin.H{"status": "selection cleared"})
}

func (r *Router) handleCancel(c *gin.Context) {
	msg, err := r.Console.CancelSelected(c.Request.Context())
	if err != nil {
		writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (r *Router) handleModifyOpen(c *gin.Context) {
	form, err := r.Console.OpenModify(c.Request.Context())
	if err != nil {
		writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (r *Router) handleModify(c *gin.Context) {
	var fields console.ModifyFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	msg, err := r.Console.SubmitModify(c.Request.Context(), fields)
	if err != nil {
		writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (r *Router) handleClients(c *gin.Context) {
	clients, err := r.Submit.Clients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (r *Router) handleGroups(c *gin.Context) {
	groups, err := r.Submit.Groups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (r *Router) handleSymbols(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"symbols": []model.SymbolOption{}})
		return
	}
	symbols, err := r.Submit.SearchSymbols(c.Request.Context(), q, c.Query("exchange"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

func (r *Router) handleDraftGet(c *gin.Context) {
	c.JSON(http.StatusOK, r.Submit.LoadDraft(c.Request.Context()))
}

func (r *Router) handleDraftPut(c *gin.Context) {
	var draft submit.TradeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	r.Submit.SaveDraft(c.Request.Context(), draft)
	c.JSON(http.StatusOK, gin.H{"status": "draft saved"})
}

func (r *Router) handlePlace(c *gin.Context) {
	var draft submit.TradeDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	msg, err := r.Submit.Place(c.Request.Context(), draft)
	if err != nil {
		writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (r *Router) handleAudit(c *gin.Context) {
	if r.Audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit trail not enabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := r.Audit.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// writeMutationError maps local validation failures to 400 and everything the
// router upstream rejected to 502. Read-path errors never reach here; the
// poller absorbs them.
func writeMutationError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if console.IsValidationError(err) ||
		errors.Is(err, submit.ErrNoGroupSelected) || errors.Is(err, submit.ErrNoClientSelected) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
