package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/binpoll/binpoll-settler/api"
	"github.com/binpoll/binpoll-settler/auditor"
	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/executor"
	"github.com/binpoll/binpoll-settler/metrics"
	"github.com/binpoll/binpoll-settler/monitor"
	"github.com/binpoll/binpoll-settler/scheduler"
	"github.com/binpoll/binpoll-settler/settlement"
	"github.com/binpoll/binpoll-settler/submitter"
	"github.com/binpoll/binpoll-settler/util"
	"github.com/binpoll/binpoll-settler/voting"
	"github.com/binpoll/binpoll-settler/wiper"
)

type App struct {
	executor        *executor.Executor
	eventMonitor    *monitor.Monitor
	settleMonitor   *scheduler.SettleMonitor
	payoutSubmitter *submitter.PayoutSubmitter
	pollAuditor     *auditor.PollAuditor
	apiServer       *api.ApiServer
	metricService   *metrics.MetricService
	dbWiper         *wiper.DBWiper
}

func NewApp(cfg *config.Config) *App {
	username := cfg.DBConfig.Username
	password := viper.GetString(config.FlagConfigDbPass)
	if password == "" {
		password = getDBPass(&cfg.DBConfig)
	}

	dbPath := fmt.Sprintf("%s:%s@%s", username, password, cfg.DBConfig.DBPath)

	db, err := gorm.Open(mysql.Open(dbPath), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("open db error, err=%+v", err.Error()))
	}

	dbConfig, err := db.DB()
	if err != nil {
		panic(err)
	}
	dbConfig.SetMaxIdleConns(cfg.DBConfig.MaxIdleConns)
	dbConfig.SetMaxOpenConns(cfg.DBConfig.MaxOpenConns)

	model.InitBlockTable(db)
	model.InitPollTable(db)
	model.InitVoteTable(db)
	model.InitSettlementTable(db)

	blockDao := dao.NewBlockDao(db)
	pollDao := dao.NewPollDao(db)
	voteDao := dao.NewVoteDao(db)
	settlementDao := dao.NewSettlementDao(db)
	daoManager := dao.NewDaoManager(blockDao, pollDao, voteDao, settlementDao)

	executor := executor.NewExecutor(cfg)

	metricService := metrics.NewMetricService(cfg)

	monitorDataHandler := monitor.NewDataHandler(daoManager)
	eventMonitor := monitor.NewMonitor(cfg, executor, monitorDataHandler, metricService)

	settlementDataHandler := settlement.NewDataHandler(daoManager)
	settler := settlement.NewSettler(settlementDataHandler)

	schedulerDataHandler := scheduler.NewDataHandler(daoManager)
	settleMonitor := scheduler.NewSettleMonitor(cfg, schedulerDataHandler, settler, metricService)

	votingDataHandler := voting.NewDataHandler(daoManager)
	recorder := voting.NewRecorder(votingDataHandler, executor, metricService,
		util.MustAmount(cfg.SettlementConfig.MinCreatorDeposit))

	submitterDataHandler := submitter.NewDataHandler(daoManager)
	payoutSubmitter := submitter.NewPayoutSubmitter(executor, submitterDataHandler, metricService)

	auditorDataHandler := auditor.NewDataHandler(daoManager)
	pollAuditor := auditor.NewPollAuditor(cfg, auditorDataHandler, metricService)

	apiDataHandler := api.NewDataHandler(daoManager)
	apiServer := api.NewApiServer(cfg, recorder, apiDataHandler)

	dbWiper := wiper.NewDBWiper(daoManager)

	return &App{
		executor:        executor,
		eventMonitor:    eventMonitor,
		settleMonitor:   settleMonitor,
		payoutSubmitter: payoutSubmitter,
		pollAuditor:     pollAuditor,
		apiServer:       apiServer,
		metricService:   metricService,
		dbWiper:         dbWiper,
	}
}

func (a *App) Start() {
	go a.executor.UpdateCachedHeightLoop()
	go a.eventMonitor.ListenEventLoop()
	go a.settleMonitor.SettlePollsLoop()
	go a.payoutSubmitter.SubmitPayoutsLoop()
	go a.pollAuditor.AuditLoop()
	go a.dbWiper.WipeLoop()
	go a.metricService.Start()
	a.apiServer.Serve()
}

func getDBPass(cfg *config.DBConfig) string {
	if cfg.KeyType == config.KeyTypeAWSPrivateKey {
		result, err := config.GetSecret(cfg.AWSSecretName, cfg.AWSRegion)
		if err != nil {
			panic(err)
		}
		type DBPass struct {
			DbPass string `json:"db_pass"`
		}
		var dbPassword DBPass
		err = json.Unmarshal([]byte(result), &dbPassword)
		if err != nil {
			panic(err)
		}
		return dbPassword.DbPass
	}
	return cfg.Password
}
