package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/uzima/alama/core"
	"github.com/uzima/alama/core/student"
	"github.com/uzima/alama/storage/csvfile"
	"github.com/uzima/alama/storage/database"
	sqlxrepos "github.com/uzima/alama/storage/database/sqlx"
)

var (
	errHelp = errors.New("help provided")

	stdout io.Writer = os.Stdout // mockable
)

type commandLine struct {
	conf *core.Config
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  score [-academic N] [-income N] [-family N] [-motivation N] [-behavior N] - score one record without persisting")
	fmt.Println("  export - dump all persisted students as JSON to stdout")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (postgres engine only)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	scoreCmd := flag.NewFlagSet("score", flag.ExitOnError)
	scoreAcademic := scoreCmd.String("academic", "", "academic performance, 0-100")
	scoreIncome := scoreCmd.String("income", "", "parent monthly income")
	scoreFamily := scoreCmd.String("family", "", "family size")
	scoreMotivation := scoreCmd.String("motivation", "", "motivation, 1-5")
	scoreBehavior := scoreCmd.String("behavior", "", "behavior, 1-3")

	switch args[1] {
	case "score":
		if err := scoreCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.score(student.Attributes{
			Academic:     *scoreAcademic,
			ParentIncome: *scoreIncome,
			FamilySize:   *scoreFamily,
			Motivation:   *scoreMotivation,
			Behavior:     *scoreBehavior,
		})
	case "export":
		return cli.export()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) openRepository() (student.Repository, func(), error) {
	switch cli.conf.Database.Engine {
	case "postgres":
		db, err := database.Open(cli.conf)
		if err != nil {
			return nil, nil, err
		}
		return sqlxrepos.NewStudentRepository(db), func() { _ = db.Close() }, nil
	default:
		repo, err := csvfile.NewStudentRepository(cli.conf.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}
