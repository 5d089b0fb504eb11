package main

import (
	"fmt"
	"os"

	"github.com/Noofbiz/learnml/config"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var configInit string

func ConfigCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runConfig,
		UsageLine: "config [-init path]",
		Short:     "prints the effective settings or writes the default file",
		Flag:      *flag.NewFlagSet("config", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&configInit, "init", "", "Write the default settings to this path if it does not exist")
	return cmd
}

func runConfig(cmd *commander.Command, args []string) error {
	if configInit != "" {
		wrote, err := config.WriteDefault(configInit)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Printf("Wrote %s\n", configInit)
		} else {
			fmt.Printf("%s already exists, left unchanged\n", configInit)
		}
		return nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
