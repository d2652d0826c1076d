package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, s *Server) {
	api := router.Group("/api")
	api.GET("/health", handleHealth(s))

	authed := api.Group("", requireAuth(s.password))
	authed.GET("/auth-check", handleAuthCheck())
	authed.GET("/data", handleGetData(s))
	authed.GET("/data/updated-at", handleUpdatedAt(s))
	authed.PUT("/data", handlePutData(s))
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// requireAuth checks the bearer password.
func requireAuth(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			errorJSON(c, http.StatusUnauthorized, "Missing Authorization header. Use: Bearer <password>")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(password)) != 1 {
			errorJSON(c, http.StatusForbidden, "Invalid password")
			return
		}
		c.Next()
	}
}

func handleHealth(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"server":  Name,
			"version": s.version,
		})
	}
}

func handleAuthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Authenticated"})
	}
}

func handleGetData(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := s.current(c.Request.Context())
		if err != nil {
			s.logger.Error("load data", "error", err)
			errorJSON(c, http.StatusInternalServerError, "failed to read data")
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func handleUpdatedAt(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := s.current(c.Request.Context())
		if err != nil {
			s.logger.Error("load data", "error", err)
			errorJSON(c, http.StatusInternalServerError, "failed to read data")
			return
		}
		c.JSON(http.StatusOK, gin.H{"updatedAt": doc.UpdatedAt})
	}
}

// putBody keeps every field raw so array checks can report which one is wrong.
type putBody struct {
	Tasks          json.RawMessage `json:"tasks"`
	Projects       json.RawMessage `json:"projects"`
	DeletedTaskIDs json.RawMessage `json:"deletedTaskIds"`
	Settings       json.RawMessage `json:"settings"`
}

func handlePutData(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body putBody
		if err := c.ShouldBindJSON(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				errorJSON(c, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			errorJSON(c, http.StatusBadRequest, "invalid JSON body")
			return
		}

		doc, err := body.document()
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.replace(c.Request.Context(), doc); err != nil {
			s.logger.Error("save data", "error", err)
			errorJSON(c, http.StatusInternalServerError, "failed to save data")
			return
		}
		s.logger.Info("data updated",
			"tasks", len(doc.Tasks),
			"projects", len(doc.Projects),
			"updated_at", doc.UpdatedAt)
		c.JSON(http.StatusOK, doc)
	}
}

func (b putBody) document() (*Document, error) {
	doc := &Document{Settings: defaultSettings}

	if err := decodeArray(b.Tasks, &doc.Tasks); err != nil {
		return nil, fmt.Errorf("tasks must be an array")
	}
	if err := decodeArray(b.Projects, &doc.Projects); err != nil {
		return nil, fmt.Errorf("projects must be an array")
	}
	if !isNull(b.DeletedTaskIDs) {
		if err := json.Unmarshal(b.DeletedTaskIDs, &doc.DeletedTaskIDs); err != nil {
			return nil, fmt.Errorf("deletedTaskIds must be an array of ids")
		}
	}
	if !isNull(b.Settings) {
		doc.Settings = b.Settings
	}
	return doc, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeArray(raw json.RawMessage, out *[]json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return errors.New("not an array")
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return err
	}
	if *out == nil {
		*out = []json.RawMessage{}
	}
	return nil
}
