package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionUserKey = "username"

type handlers struct {
	svc Services
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

type favoriteRequest struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// respondError maps domain errors to status codes. Store failures are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAccountExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already registered"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func remember(c *gin.Context, username domain.Username) error {
	s := sessions.Default(c)
	s.Set(sessionUserKey, string(username))
	return s.Save()
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	acc, err := h.svc.Accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := remember(c, acc.Username); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Success: true, Username: string(acc.Username)})
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}
	acc, err := h.svc.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := remember(c, acc.Username); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Success: true, Username: string(acc.Username)})
}

func (h *handlers) logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) me(c *gin.Context) {
	username, _ := sessions.Default(c).Get(sessionUserKey).(string)
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username})
}

// history ignores the username query parameter; every member sees the
// whole room.
func (h *handlers) history(c *gin.Context) {
	entries, err := h.svc.History.Search(c.Request.Context(), c.Param("room"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handlers) export(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.svc.History.Export(c.Request.Context(), c.Param("room"), &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// favoriteUser falls back to the logged-in user when the body names none.
func favoriteUser(c *gin.Context, req favoriteRequest) string {
	if req.Username != "" {
		return req.Username
	}
	username, _ := sessions.Default(c).Get(sessionUserKey).(string)
	return username
}

func (h *handlers) addFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	created, err := h.svc.Favorites.Add(c.Request.Context(), favoriteUser(c, req), req.Room)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isFavorite": created})
}

func (h *handlers) removeFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	removed, err := h.svc.Favorites.Remove(c.Request.Context(), favoriteUser(c, req), req.Room)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

func (h *handlers) listFavorites(c *gin.Context) {
	rooms, err := h.svc.Favorites.List(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.svc.Rooms.List()})
}

func (h *handlers) roomUsers(c *gin.Context) {
	room, err := domain.NewRoomName(c.Param("room"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "users": h.svc.Rooms.Members(room)})
}
