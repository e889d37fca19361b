package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/startcommunity/startbot/src/actions"
	"github.com/startcommunity/startbot/src/api"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	shareddata "github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/metrics"
)

func main() {
	// Use a single DB connection for all modules
	dsn, err := shareddata.GetMySQLDSN()
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	db, err := shareddata.ConnectMySQL(dsn)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := shareddata.Migrate(db); err != nil {
		log.Fatalf("db: %v", err)
	}

	var rdb *redis.Client
	if url := shareddata.GetRedisURL(); url != "" {
		rdb = shareddata.MustRedis(url)
		defer rdb.Close()
	} else {
		log.Printf("redis: REDIS_URL not set, running without cache or member events")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager, err := actions.StartAll(ctx, db, rdb, recorder)
	if err != nil {
		log.Fatalf("actions start: %v", err)
	}

	apiCfg := sharedconfig.LoadAPIConfig(db)
	if apiCfg.Enabled {
		deps := api.Deps{
			Members:  shareddata.NewMemberStore(db),
			Metrics:  recorder,
			Gatherer: reg,
		}
		if rdb != nil {
			deps.Events = shareddata.NewMemberEvents(rdb, "api")
		}
		go func() {
			if err := api.Serve(ctx, apiCfg.Listen, api.New(apiCfg, deps)); err != nil {
				log.Fatalf("api: %v", err)
			}
		}()
	}

	// Wait for termination
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cancel()
	manager.Stop(context.Background())
}
