package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/voicegate/internal/config"
	"github.com/dkeye/voicegate/internal/core"
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const operatorKey = "operator"

// Controller is the part of the connection controller the API drives.
type Controller interface {
	Connect(guild domain.GuildID, channel domain.ChannelID, selfMute, selfDeaf bool) error
	Disconnect(guild domain.GuildID) error
	Reconnect(guild domain.GuildID, channel domain.ChannelID) error
	Connection(guild domain.GuildID) (*core.Connection, bool)
	Connections() []core.ConnectionInfo
	Pending() []core.RequestInfo
}

type GatewayStatus interface {
	Connected() bool
}

type connectBody struct {
	ChannelID domain.ChannelID `json:"channel_id"`
	SelfMute  bool             `json:"self_mute"`
	SelfDeaf  bool             `json:"self_deaf"`
}

type reconnectBody struct {
	ChannelID domain.ChannelID `json:"channel_id"`
}

type stateBody struct {
	ChannelID *domain.ChannelID `json:"channel_id"`
	SelfMute  *bool             `json:"self_mute"`
	SelfDeaf  *bool             `json:"self_deaf"`
}

// OperatorMiddleware pins a stable operator id into the cookie session so
// intents can be attributed in the logs.
func OperatorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		op, _ := s.Get(operatorKey).(string)
		if op == "" {
			op = uuid.NewString()
			s.Set(operatorKey, op)
			if err := s.Save(); err != nil {
				log.Warn().Str("module", "adapters.http").Err(err).Msg("session save failed")
			}
		}
		c.Set(operatorKey, op)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, ctl Controller, gw GatewayStatus, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "gateway": gw.Connected()})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	store := cookie.NewStore([]byte(cfg.Secret))
	api := r.Group("/api")
	api.Use(sessions.Sessions("VoiceGate", store))
	api.Use(OperatorMiddleware())

	h := &handlers{ctl: ctl}
	api.GET("/connections", h.listConnections)
	api.GET("/connections/:guild", h.getConnection)
	api.GET("/requests", h.listRequests)
	api.POST("/guilds/:guild/connect", h.connect)
	api.POST("/guilds/:guild/reconnect", h.reconnect)
	api.DELETE("/guilds/:guild/connection", h.disconnect)
	api.PATCH("/guilds/:guild/state", h.updateState)

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}

type handlers struct {
	ctl Controller
}

func (h *handlers) listConnections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connections": h.ctl.Connections()})
}

func (h *handlers) getConnection(c *gin.Context) {
	conn, ok := h.ctl.Connection(domain.GuildID(c.Param("guild")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no connection for guild"})
		return
	}
	c.JSON(http.StatusOK, conn.Snapshot())
}

func (h *handlers) listRequests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"requests": h.ctl.Pending()})
}

func (h *handlers) connect(c *gin.Context) {
	var body connectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	guild := domain.GuildID(c.Param("guild"))
	h.logIntent(c, "connect", guild)
	if err := h.ctl.Connect(guild, body.ChannelID, body.SelfMute, body.SelfDeaf); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
}

func (h *handlers) reconnect(c *gin.Context) {
	var body reconnectBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}
	guild := domain.GuildID(c.Param("guild"))
	h.logIntent(c, "reconnect", guild)
	if err := h.ctl.Reconnect(guild, body.ChannelID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
}

func (h *handlers) disconnect(c *gin.Context) {
	guild := domain.GuildID(c.Param("guild"))
	h.logIntent(c, "disconnect", guild)
	if err := h.ctl.Disconnect(guild); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
}

// updateState changes a live connection through its setters, each of which
// re-announces the full state.
func (h *handlers) updateState(c *gin.Context) {
	var body stateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	guild := domain.GuildID(c.Param("guild"))
	conn, ok := h.ctl.Connection(guild)
	if !ok || conn.Evicted() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no connection for guild"})
		return
	}
	if body.ChannelID != nil {
		if err := body.ChannelID.Validate(); err != nil {
			respondError(c, err)
			return
		}
	}
	h.logIntent(c, "state", guild)

	if body.SelfMute != nil {
		conn.SetSelfMuted(*body.SelfMute)
	}
	if body.SelfDeaf != nil {
		conn.SetSelfDeafened(*body.SelfDeaf)
	}
	if body.ChannelID != nil {
		conn.SetChannel(*body.ChannelID)
	}
	c.JSON(http.StatusAccepted, conn.Snapshot())
}

func (h *handlers) logIntent(c *gin.Context, intent string, guild domain.GuildID) {
	log.Info().
		Str("module", "adapters.http").
		Str("operator", c.GetString(operatorKey)).
		Str("intent", intent).
		Str("guild", string(guild)).
		Msg("intent received")
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGuildEmpty),
		errors.Is(err, domain.ErrGuildTooLong),
		errors.Is(err, domain.ErrChannelEmpty),
		errors.Is(err, domain.ErrChannelTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
