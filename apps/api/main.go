package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/scholarhelp/apps/api/echo"
	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/assessment"
	"github.com/trezcool/scholarhelp/core/user"
	"github.com/trezcool/scholarhelp/services/inference"
	logsvc "github.com/trezcool/scholarhelp/services/logger"
	"github.com/trezcool/scholarhelp/storage/database"
	inmemdb "github.com/trezcool/scholarhelp/storage/database/inmem"
	sqlxrepos "github.com/trezcool/scholarhelp/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up logger
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	ctx := context.Background()

	// set up DB
	repo, closeDB, err := setUpUserRepository(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// set up services
	usrSvc, err := user.NewService(ctx, repo, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading users: %v", err), err)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	predictor, err := inference.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading grade classifier: %v", err), err)
	}
	assessSvc := assessment.NewService(predictor, usrSvc, validate, translator, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("model").Set(conf.Model.Kind)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		AssessmentSvc: assessSvc,
		Validate:      validate,
		Translator:    translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpUserRepository opens the configured store. The in-memory engine keeps nothing across restarts.
func setUpUserRepository(ctx context.Context, conf *core.Config) (user.Repository, func() error, error) {
	if conf.Database.Engine == database.EngineMemory {
		return inmemdb.NewUserRepository(inmemdb.Open()), func() error { return nil }, nil
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "migrating")
	}
	return sqlxrepos.NewUserRepository(db), db.Close, nil
}
