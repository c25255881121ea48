package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/logging"
	"github.com/binpoll/binpoll-settler/voting"
)

// ApiServer exposes the off-chain poll surface: poll creation, vote
// recording and price quotes. Reads come straight from the mirror db, so
// on-chain polls are served too.
type ApiServer struct {
	config       *config.Config
	recorder     *voting.Recorder
	dataProvider DataProvider
	router       *gin.Engine
}

func NewApiServer(cfg *config.Config, recorder *voting.Recorder, dataProvider DataProvider) *ApiServer {
	gin.SetMode(gin.ReleaseMode)
	s := &ApiServer{
		config:       cfg,
		recorder:     recorder,
		dataProvider: dataProvider,
		router:       gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *ApiServer) registerRoutes() {
	v1 := s.router.Group("/v1")
	v1.POST("/polls", s.createPoll)
	v1.GET("/polls/:id", s.getPoll)
	v1.GET("/polls/:id/quote", s.getQuote)
	v1.POST("/polls/:id/votes", s.recordVote)
	v1.GET("/polls/:id/settlement", s.getSettlement)
}

func (s *ApiServer) Serve() {
	addr := fmt.Sprintf(":%d", s.config.APIConfig.Port)
	logging.Logger.Infof("api server listening on %s", addr)
	if err := s.router.Run(addr); err != nil {
		logging.Logger.Errorf("api server stopped, err=%s", err.Error())
	}
}
