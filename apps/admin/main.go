package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/user"
	logsvc "github.com/trezcool/scholarhelp/services/logger"
	"github.com/trezcool/scholarhelp/storage/database"
	inmemdb "github.com/trezcool/scholarhelp/storage/database/inmem"
	sqlxrepos "github.com/trezcool/scholarhelp/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	cli := commandLine{
		logger:     logger,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}

	// set up DB
	if conf.Database.Engine == database.EngineMemory {
		cli.usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	} else {
		var db *sqlx.DB
		if db, err = database.Open(context.Background(), conf); err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		cli.db = db
		cli.usrRepo = sqlxrepos.NewUserRepository(db)
	}

	err = cli.run(os.Args)
	if cli.db != nil {
		_ = cli.db.Close()
	}
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", describeError(err))
		}
		os.Exit(1)
	}
}
