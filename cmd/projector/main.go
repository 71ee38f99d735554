package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	_ "github.com/go-sql-driver/mysql"

	"github.com/EnnubaBPMN2/marten-bank-sample/config"
	"github.com/EnnubaBPMN2/marten-bank-sample/pkg/otellib"
	"github.com/EnnubaBPMN2/marten-bank-sample/repository"
	"github.com/EnnubaBPMN2/marten-bank-sample/service/summary"
)

func main() {
	rootCmd := cobra.Command{
		Use: "projector",
	}
	rootCmd.AddCommand(
		startProjectorCommand(),
		rebuildProjectionCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

func startProjectorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "start the monthly summary projector",
		Run: func(cmd *cobra.Command, args []string) {
			startProjector()
		},
	}
}

func rebuildProjectionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "rebuild the monthly summaries from the start of the journal",
		Run: func(cmd *cobra.Command, args []string) {
			rebuildProjection()
		},
	}
}

func daemonOptions(conf config.ProjectorConfig) []summary.DaemonOption {
	var options []summary.DaemonOption
	if conf.BatchSize > 0 {
		options = append(options, summary.WithBatchSize(conf.BatchSize))
	}
	if conf.IdleSleep > 0 {
		options = append(options, summary.WithIdleSleep(conf.IdleSleep))
	}
	return options
}

func startProjector() {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	tracerProvider, shutdown := otellib.InitOtel("bank-projector", "local", conf.Jaeger)
	defer shutdown()

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	db := conf.MySQL.MustConnect()
	provider := repository.NewProvider(db)
	daemon := summary.NewDaemon(provider, logger, daemonOptions(conf.Projector)...)

	fmt.Println("METRICS:", conf.Metrics.Addr)

	httpMux := http.NewServeMux()
	httpMux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    conf.Metrics.Addr,
		Handler: httpMux,
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = otellib.ToContext(ctx, logger)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			panic(err)
		}
		fmt.Println("Shutdown HTTP server successfully")
	}()

	go func() {
		defer wg.Done()

		err := daemon.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			panic(err)
		}
		fmt.Println("Shutdown projector successfully")
	}()

	//--------------------------------
	// Graceful Shutdown
	//--------------------------------
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, os.Kill)
	<-stop

	cancel()

	shutdownCtx, cancelTimeout := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelTimeout()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		panic(err)
	}

	wg.Wait()
}

func rebuildProjection() {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	db := conf.MySQL.MustConnect()
	provider := repository.NewProvider(db)
	daemon := summary.NewDaemon(provider, logger, daemonOptions(conf.Projector)...)

	ctx, cancel := context.WithCancel(context.Background())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, os.Kill)
	go func() {
		<-stop
		cancel()
	}()

	err := daemon.Rebuild(ctx)
	if err != nil {
		fmt.Println("[ERROR]", err)
		return
	}
	fmt.Println("Rebuilt monthly summaries successfully")
}
