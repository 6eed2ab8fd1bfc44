package config

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uptime-config/models"
	v1 "uptime-config/services/v1"
)

// maxConfigBodyBytes caps POST bodies. Real configurations are a few kilobytes.
const maxConfigBodyBytes = 1 << 20

// Syncer is the part of the sync coordinator the handlers use.
type Syncer interface {
	Read(ctx context.Context) (models.ConfigurationDocument, error)
	Write(ctx context.Context, doc models.ConfigurationDocument, creds *v1.MirrorCredentials) (v1.SyncResult, error)
}

type Handler struct {
	syncer Syncer
	logger *zap.Logger
}

func NewHandler(syncer Syncer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{syncer: syncer, logger: logger}
}

// updateRequest is the POST body. The github* names are what older editor builds send. Unknown
// members inside the two sections are kept; unknown members here are rejected.
type updateRequest struct {
	PageSettings    *models.PageSettings    `json:"pageSettings"`
	MonitorSettings *models.MonitorSettings `json:"monitorSettings"`

	MirrorToken string `json:"mirrorToken"`
	MirrorOwner string `json:"mirrorOwner"`
	MirrorRepo  string `json:"mirrorRepo"`

	GitHubToken string `json:"githubToken"`
	GitHubOwner string `json:"githubOwner"`
	GitHubRepo  string `json:"githubRepo"`
}

func (r updateRequest) credentials() (*v1.MirrorCredentials, error) {
	return v1.NewMirrorCredentials(
		firstNonEmpty(r.MirrorToken, r.GitHubToken),
		firstNonEmpty(r.MirrorOwner, r.GitHubOwner),
		firstNonEmpty(r.MirrorRepo, r.GitHubRepo),
	)
}

func (h *Handler) GetConfig(c *gin.Context) {
	doc, err := h.syncer.Read(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, doc)
	case errors.Is(err, v1.ErrNotConfigured):
		c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
	default:
		h.logger.Error("config load failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load config",
			"details": err.Error(),
		})
	}
}

func (h *Handler) PostConfig(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxConfigBodyBytes)

	var req updateRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	creds, err := req.credentials()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := models.ConfigurationDocument{
		PageSettings:    req.PageSettings,
		MonitorSettings: req.MonitorSettings,
	}
	res, err := h.syncer.Write(c.Request.Context(), doc, creds)
	switch {
	case err == nil:
	case errors.Is(err, v1.ErrMalformedDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update config",
			"details": err.Error(),
		})
		return
	}

	if res.Warning != "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "warning": res.Warning})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
