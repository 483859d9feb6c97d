package debugapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"ofonoril/db"
	"ofonoril/radio"
	"ofonoril/ril"
)

// Modem is the plugin side the server drives.
type Modem interface {
	ril.RadioFunctions
	SIMStatus() radio.SIMStatus
}

type Options struct {
	Listen         string
	RequestTimeout time.Duration
	Store          *db.Store
	Logger         *log.Logger
}

type Server struct {
	modem   Modem
	host    *Host
	store   *db.Store
	timeout time.Duration
	logger  *log.Logger
	engine  *gin.Engine
	http    *http.Server
}

// response is the envelope every route answers with.
type response struct {
	Code int    `json:"code"`
	Data any    `json:"data,omitempty"`
	Msg  string `json:"msg"`
}

func sendSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response{Code: http.StatusOK, Data: data, Msg: "success"})
}

func sendError(c *gin.Context, status int, msg string) {
	c.JSON(status, response{Code: status, Msg: msg})
}

func New(modem Modem, host *Host, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		modem:   modem,
		host:    host,
		store:   opts.Store,
		timeout: timeout,
		logger:  logger,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	s.http = &http.Server{Addr: opts.Listen, Handler: s.engine}
	return s
}

func (s *Server) routes() {
	s.engine.POST("/requests/:code", s.handleRequest)
	s.engine.GET("/state", s.handleState)
	s.engine.GET("/events", s.handleEvents)
	s.engine.GET("/identity", s.handleIdentity)

	history := s.engine.Group("/history")
	{
		history.GET("/calls", s.handleCallHistory)
		history.GET("/messages", s.handleMessageHistory)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Info("🛠️ debug api listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("🛠️ debug api stopped", "err", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type requestResult struct {
	Token   ril.Token `json:"token"`
	Status  string    `json:"status"`
	Errno   ril.Errno `json:"errno"`
	Payload any       `json:"payload,omitempty"`
}

func (s *Server) handleRequest(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("code"))
	if err != nil || n <= 0 {
		sendError(c, http.StatusBadRequest, "bad request code")
		return
	}
	code := ril.Request(n)

	var payload any
	if bind, ok := payloads[code]; ok {
		if payload, err = bind(c); err != nil {
			sendError(c, http.StatusBadRequest, "bad payload for "+code.String()+": "+err.Error())
			return
		}
	}

	t, done := s.host.Expect()
	s.logger.Debug("🛠️ request", "code", code, "token", t)
	s.modem.OnRequest(code, payload, t)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case res := <-done:
		sendSuccess(c, requestResult{
			Token:   res.Token,
			Status:  res.Status,
			Errno:   res.Errno,
			Payload: res.Payload,
		})
	case <-timer.C:
		s.host.Forget(t)
		s.modem.OnCancel(t)
		sendError(c, http.StatusGatewayTimeout, "no completion for "+code.String())
	case <-c.Request.Context().Done():
		s.host.Forget(t)
		s.modem.OnCancel(t)
	}
}

func (s *Server) handleState(c *gin.Context) {
	sendSuccess(c, gin.H{
		"radio_state": s.modem.CurrentState().String(),
		"sim_status":  s.modem.SIMStatus().String(),
		"version":     s.modem.Version(),
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	var since uint64
	if v := c.Query("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			sendError(c, http.StatusBadRequest, "bad since")
			return
		}
		since = n
	}
	events, last := s.host.Events(since)
	sendSuccess(c, gin.H{"events": events, "last": last})
}

// limit reads the optional limit query, 50 by default and at most 500.
func limit(c *gin.Context) (int, bool) {
	v := c.DefaultQuery("limit", "50")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, 500), true
}

func (s *Server) handleCallHistory(c *gin.Context) {
	if s.store == nil {
		sendError(c, http.StatusServiceUnavailable, "no database")
		return
	}
	n, ok := limit(c)
	if !ok {
		sendError(c, http.StatusBadRequest, "bad limit")
		return
	}
	calls, err := s.store.RecentCalls(n)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sendSuccess(c, calls)
}

func (s *Server) handleMessageHistory(c *gin.Context) {
	if s.store == nil {
		sendError(c, http.StatusServiceUnavailable, "no database")
		return
	}
	n, ok := limit(c)
	if !ok {
		sendError(c, http.StatusBadRequest, "bad limit")
		return
	}
	msgs, err := s.store.RecentMessages(n)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sendSuccess(c, msgs)
}

func (s *Server) handleIdentity(c *gin.Context) {
	if s.store == nil {
		sendError(c, http.StatusServiceUnavailable, "no database")
		return
	}
	identity := gin.H{}
	for _, key := range []string{"imei", "imsi", "revision"} {
		v, err := s.store.GetString(key)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}
		identity[key] = v
	}
	sendSuccess(c, identity)
}
