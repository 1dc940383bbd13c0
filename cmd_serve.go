package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mindmeld/controllers"
	"mindmeld/mindmeld"
	"mindmeld/observability"
	"mindmeld/router"
	"mindmeld/tools"
	"mindmeld/workers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	shutdownTracing, err := observability.InitTracing(cmd.Context(), a.conf.Tracing, a.log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			a.log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	dict, err := tools.LoadDictionary(a.conf.DictionaryPath)
	if err != nil {
		return fmt.Errorf("dictionary: %w", err)
	}
	a.log.Info("dictionary loaded", "path", a.conf.DictionaryPath, "words", dict.Len())

	engine := mindmeld.NewEngine(a.store, a.embedder, a.log, a.conf.Game.UseIndividualQueries())
	validator := mindmeld.NewValidator(dict)
	generator := mindmeld.NewGenerator(a.llm, engine, validator, a.log, a.conf)
	judge := mindmeld.NewJudge(a.llm, a.conf.OpenAI)
	recorder := mindmeld.NewRecorder(a.store, a.embedder, a.log, a.conf.Game.RecordBatchSize)
	novelty := mindmeld.NewNovelty(a.store, a.conf.Game.ScanLimit)
	sessions := mindmeld.NewSessions(generator, judge, validator, recorder, novelty, a.log, a.conf.Game)
	defer sessions.Close()

	if strings.EqualFold(a.conf.LogMode, "prod") || strings.EqualFold(a.conf.LogMode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	router.Initialize(r, a.conf, a.log, a.store, &controllers.Services{
		Retriever: engine,
		Generator: generator,
		Judge:     judge,
		Recorder:  recorder,
		Validator: validator,
		Words:     novelty,
		Games:     sessions,
	})

	srv := &http.Server{
		Addr:              ":" + a.conf.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeperDone := workers.StartSessionSweeper(ctx, sessions, 15*time.Second, a.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("MindMeld listening", "port", a.conf.ApiPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	stop()
	<-sweeperDone
	return err
}
