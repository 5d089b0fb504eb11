// Command learnml runs the KNN and linear regression teaching engines from
// the terminal and renders their state as images.
//
//	$ learnml knn -dataset "Circular Pattern" -autoplay -out plots
//	$ learnml regression -epochs 300 -lr 0.1 -out plots/fit.png
//	$ learnml datasets -dir my-data
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strconv"

	"github.com/Noofbiz/learnml/config"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"k8s.io/klog/v2"
)

var (
	configPath string
	verbosity  int
)

// appCommands are wrapped by allCommands with the shared flags and setup.
func appCommands() []*commander.Command {
	return []*commander.Command{
		KNNCmd(),
		RegressionCmd(),
		DatasetsCmd(),
		ExplainCmd(),
		ConfigCmd(),
	}
}

func allCommands() *commander.Command {
	root := &commander.Command{
		UsageLine: "learnml <command> [options]",
		Short:     "interactive KNN and linear regression walkthroughs",
		Flag:      *flag.NewFlagSet("learnml", flag.ExitOnError),
	}
	for _, cmd := range appCommands() {
		cmd.Run = wrapRun(cmd.Run)
		cmd.Flag.StringVar(&configPath, "config", "", "YAML settings file (see 'learnml config -init')")
		cmd.Flag.IntVar(&verbosity, "v", 0, "log verbosity")
		root.Subcommands = append(root.Subcommands, cmd)
	}
	return root
}

// wrapRun points klog at the requested verbosity before the command runs.
func wrapRun(run func(*commander.Command, []string) error) func(*commander.Command, []string) error {
	return func(cmd *commander.Command, args []string) error {
		klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
		klog.InitFlags(klogFlags)
		if err := klogFlags.Set("v", strconv.Itoa(verbosity)); err != nil {
			return err
		}
		defer klog.Flush()
		return run(cmd, args)
	}
}

// loadConfig returns the settings from -config, or the defaults.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	klog.V(1).InfoS("config loaded", "path", configPath)
	return cfg, nil
}

// visited returns the names of the flags set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func main() {
	if err := allCommands().Dispatch(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "learnml: %v\n", err)
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
}
