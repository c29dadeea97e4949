package main

import (
	"github.com/pkg/errors"

	"github.com/uzima/alama/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Database.Engine != "postgres" {
		return errors.Errorf("migrate requires the postgres engine, current engine is %q", cli.conf.Database.Engine)
	}

	db, err := database.Open(cli.conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return database.Run(args[0], db, arguments...)
}
