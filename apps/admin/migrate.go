package main

import (
	"github.com/trezcool/goose"

	"github.com/trezcool/scholarhelp/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

// migrate passes args through to goose, against the migrations of the database engine.
func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return database.ErrNotSQL
	}
	if err := database.SetDialect(cli.db); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db.DB, database.MigrationsFS, database.MigrationsDir(cli.db.DriverName()), args[1:]...)
}
