package main

import (
	"fmt"

	"github.com/uzima/alama/core/student"
)

func (cli *commandLine) score(attrs student.Attributes) error {
	res := student.ComputeScore(attrs)
	fmt.Fprintf(stdout, "score:  %.2f\n", res.Score)
	fmt.Fprintf(stdout, "risk:   %s\n", res.Risk)
	fmt.Fprintf(stdout, "reason: %s\n", res.Reason)
	return nil
}
