package main

import (
	"encoding/json"
)

func (cli *commandLine) export() error {
	repo, cleanup, err := cli.openRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	students, err := repo.QueryAllStudents()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(students)
}
