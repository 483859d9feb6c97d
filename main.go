package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/godbus/dbus/v5"
	"github.com/jpillora/backoff"
	"github.com/spf13/pflag"

	"ofonoril/audio"
	"ofonoril/config"
	"ofonoril/db"
	"ofonoril/debugapi"
	"ofonoril/netif"
	"ofonoril/ofono"
	"ofonoril/phone"
)

// go build -ldflags "-X 'main.FW_VERSION=0.1.0'" .
var FW_VERSION string = "0.1.0"

const shutdownPeriod = 5 * time.Second

func newLogger(cfg config.Log, debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: cfg.Timestamps,
		TimeFormat:      time.DateTime,
	})
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		logger.Warn("⚠️ unknown log level, using info", "level", cfg.Level)
		level = log.InfoLevel
	}
	if debug {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func openStore(path string, logger *log.Logger) *db.Store {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("💾 no database, history disabled", "path", path, "err", err)
		return nil
	}
	store, err := db.Open(path)
	if err != nil {
		logger.Warn("💾 no database, history disabled", "path", path, "err", err)
		return nil
	}
	return store
}

func newAudio(cfg config.Audio, logger *log.Logger) audio.Router {
	if cfg.Driver != "serial" {
		return audio.NewNull(logger)
	}
	router, err := audio.OpenSerial(audio.SerialConfig{
		Port:     cfg.Port,
		Baud:     cfg.Baud,
		Helper:   cfg.Helper,
		Priority: cfg.RealtimePriority,
	}, logger)
	if err != nil {
		logger.Warn("🔊 audio port unavailable, calls will be silent", "err", err)
		return audio.NewNull(logger)
	}
	return router
}

func main() {
	configPath := pflag.StringP("config", "c", "/etc/ofono-ril/config.yaml", "configuration file")
	debug := pflag.BoolP("debug", "d", false, "log at debug level")
	listen := pflag.StringP("listen", "l", "", "debug API address (overrides api.listen)")
	dbPath := pflag.String("db", "", "database file (overrides db.path)")
	showVersion := pflag.BoolP("version", "v", false, "print the version and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("⚠️ could not load config", "path", *configPath, "err", err)
	}
	if cfg.Version == config.DefaultVersion {
		cfg.Version = "ofono-ril " + FW_VERSION
	}
	if *showVersion {
		fmt.Println(cfg.Version)
		return
	}
	if *listen != "" {
		cfg.API.Listen = *listen
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}

	logger := newLogger(cfg.Log, *debug)
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("🚀 starting", "version", cfg.Version, "modem", cfg.Ofono.Modem)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(cfg.DB.Path, logger)
	if store != nil {
		defer store.Close()
	}

	bus, err := ofono.ConnectSystemBus()
	if err != nil {
		logger.Fatal("⚠️ could not connect to the system bus", "err", err)
	}
	defer bus.Close()

	path, err := ofono.WaitForModem(ctx, bus, dbus.ObjectPath(cfg.Ofono.Modem), &backoff.Backoff{
		Min:    cfg.Ofono.RetryMin,
		Max:    cfg.Ofono.RetryMax,
		Factor: 2,
		Jitter: true,
	}, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("👋 Goodbye")
			return
		}
		logger.Fatal("⚠️ no modem", "err", err)
	}

	router := newAudio(cfg.Audio, logger.WithPrefix("audio"))
	defer router.Close()

	watcher := ofono.NewWatcher(logger.WithPrefix("ofono"))
	host := debugapi.NewHost(logger.WithPrefix("host"))
	modem := phone.New(ctx, phone.Config{
		Modem:           path,
		SMSC:            cfg.SMS.SMSC,
		DataInterface:   cfg.Data.Interface,
		CallTimeout:     cfg.Ofono.CallTimeout,
		ScanTimeout:     cfg.Ofono.ScanTimeout,
		PendingTimeout:  cfg.Pending.Timeout,
		SIMPollInterval: cfg.SIM.PollInterval,
		Journal:         cfg.SMS.Journal,
		Version:         cfg.Version,
	}, phone.Deps{
		Caller:  bus,
		Watcher: watcher,
		Host:    host,
		Audio:   router,
		Netif:   &netif.Netlink{Unmanage: cfg.Data.Unmanage, Logger: logger.WithPrefix("netif")},
		Store:   store,
		Logger:  logger.WithPrefix("ril"),
	})
	if err := modem.Start(); err != nil {
		logger.Fatal("⚠️ could not start modem", "path", path, "err", err)
	}
	go watcher.Run(ctx, bus.Signals())

	srv := debugapi.New(modem, host, debugapi.Options{
		Listen:         cfg.API.Listen,
		RequestTimeout: cfg.API.RequestTimeout,
		Store:          store,
		Logger:         logger.WithPrefix("api"),
	})
	if cfg.API.Listen != "" {
		srv.Start()
	}

	go func() {
		<-ctx.Done()
		logger.Info("🛑 shutting down")
		modem.Close()
	}()
	modem.WaitForClosed()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("🛠️ debug api shutdown", "err", err)
	}
	logger.Info("👋 Goodbye")
}
