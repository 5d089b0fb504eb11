package main

import (
	"fmt"

	"github.com/Noofbiz/learnml/explain"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

func ExplainCmd() *commander.Command {
	return &commander.Command{
		Run:       runExplain,
		UsageLine: "explain [knn|linear-regression|decision-tree]",
		Short:     "prints the step-by-step explanation of an algorithm",
		Flag:      *flag.NewFlagSet("explain", flag.ExitOnError),
	}
}

func runExplain(cmd *commander.Command, args []string) error {
	alg := explain.KNN
	if len(args) > 0 {
		var err error
		if alg, err = explain.ParseAlgorithm(args[0]); err != nil {
			return err
		}
	}
	w := explain.NewWalkthrough(alg)
	if w.Len() == 0 {
		fmt.Printf("No explanation for %s yet.\n", alg)
		return nil
	}
	for {
		step, _, _ := w.Current()
		fmt.Printf("%s  [%3.0f%%]\n%s\n\n", step.Title, 100*w.Progress(), step.Description)
		if !w.Next() {
			return nil
		}
	}
}
