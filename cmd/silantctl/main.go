// silantctl provisions accounts and maintains catalogs. These operations are
// not exposed over HTTP.
//
//	silantctl [--config path] [--log-level debug] migrate
//	silantctl [--config path] seed -f fixtures.yaml
//	silantctl [--config path] create-user --username u --password p --role CLIENT [--first-name n]
//	silantctl [--config path] delete-user --username u
//	silantctl [--config path] delete-catalog --kind engine_model --name "Kubota D1803"
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}

	global := pflag.NewFlagSet("silantctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	configPath := global.StringP("config", "c", defaultPath, "path to the YAML configuration file")
	logLevel := global.String("log-level", "", "override log.level from the configuration")
	if err := global.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printUsage(out, global)
			return nil
		}
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(out, global)
		return fmt.Errorf("missing command")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		printUsage(out, global)
		return fmt.Errorf("unknown command %q", rest[0])
	}
	return cmd(&env{configPath: *configPath, logLevel: *logLevel, out: out}, rest[1:])
}

func printUsage(out io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(out, "usage: silantctl [--config path] <command> [flags]")
	fmt.Fprintln(out, "\ncommands:")
	for _, name := range commandNames {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out, "\nglobal flags:")
	flags.SetOutput(out)
	flags.PrintDefaults()
}
