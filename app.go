package main

import (
	"fmt"
	"time"

	"mindmeld/config"
	"mindmeld/db"
	"mindmeld/logger"
	"mindmeld/mindmeld"
	"mindmeld/tools"

	"github.com/jinzhu/gorm"
	goredis "github.com/redis/go-redis/v9"
)

// app carries the clients every command shares.
type app struct {
	conf     config.Configuration
	log      *logger.Logger
	db       *gorm.DB
	store    *db.RoundStore
	llm      *tools.OpenAIClient
	embedder mindmeld.Embedder
	rdb      *goredis.Client
}

// newApp loads config and opens the store. withAI also builds the OpenAI
// client and, when REDIS_ADDR is set, the embedding cache in front of it.
func newApp(withAI bool) (*app, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(conf.LogMode)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	database, err := db.Connect(conf, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("database: %w", err)
	}

	a := &app{
		conf:  conf,
		log:   log,
		db:    database,
		store: db.NewRoundStore(database, log, conf.OpenAI.EmbeddingDimension, conf.Game.ScanLimit),
	}
	if !withAI {
		return a, nil
	}

	a.llm, err = tools.NewOpenAIClient(conf.OpenAI)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.embedder = a.llm

	if conf.Redis.Addr != "" {
		rdb, err := tools.NewRedisClient(conf.Redis)
		if err != nil {
			log.Warn("embedding cache disabled", "error", err)
		} else {
			a.rdb = rdb
			ttl := time.Duration(conf.Redis.TTLMinutes) * time.Minute
			a.embedder = tools.NewCachedEmbedder(a.llm, rdb, log, a.llm.EmbeddingModel(), ttl)
			log.Info("embedding cache enabled", "addr", conf.Redis.Addr)
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	a.log.Sync()
}
