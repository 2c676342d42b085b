package http

import (
	"net/http"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	keyUserID = "user_id"
	keyName   = "name"
	keyImage  = "image"
)

type handlers struct {
	deps Deps
}

type sessionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) stats(c *gin.Context) {
	st := h.deps.Orch.Stats()
	c.JSON(http.StatusOK, gin.H{
		"connections":  st.Connections,
		"identified":   st.Identified,
		"online_users": st.OnlineUsers,
		"channels":     st.Channels,
		"sockets":      h.deps.Hub.Count(),
	})
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.deps.ICE.ICEServers})
}

// openSession stores identity claims in the cookie session. They are taken
// at face value by the WebSocket handshake, the same as query parameters.
func (h *handlers) openSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := domain.ValidateUserID(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := domain.ClampName(req.Name)

	s := sessions.Default(c)
	s.Set(keyUserID, string(user))
	s.Set(keyName, name)
	s.Set(keyImage, req.Image)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not saved"})
		return
	}
	c.JSON(http.StatusOK, domain.NewProfile(user, name, req.Image))
}

func (h *handlers) closeSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear session")
	}
	c.Status(http.StatusNoContent)
}

// handshakeFrom prefers query parameters and falls back to the cookie session
// field by field.
func handshakeFrom(c *gin.Context) orch.Handshake {
	s := sessions.Default(c)
	pick := func(query, key string) string {
		if v := c.Query(query); v != "" {
			return v
		}
		v, _ := s.Get(key).(string)
		return v
	}
	return orch.Handshake{
		UserID: pick("userId", keyUserID),
		Name:   pick("name", keyName),
		Image:  pick("image", keyImage),
	}
}
