// Package cli translates command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bootforge/bootforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("bootforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bootforge - provisions a network-boot deployment environment.

Usage:
  bootforge [options] COMMAND

Commands:
  generate
    Validate the environment configuration and generate all boot
    configuration artifacts.
  fetch
    Download boot loader and OS assets and build the serving tree.
  all
    Run generate followed by fetch.

Options:
`)
		flagSet.PrintDefaults()
	}

	envFlag := flagSet.String("env", "provision.env", "Path to the environment configuration file.")
	templatesFlag := flagSet.String("templates", "", "Directory with artifact templates. Empty uses the built-in set.")
	catalogFlag := flagSet.String("catalog", "", "Path to an HCL asset catalogue. Empty uses the built-in default.")
	tftpRootFlag := flagSet.String("tftp-root", "/srv/tftp", "Root directory served over TFTP.")
	httpRootFlag := flagSet.String("http-root", "/srv/http", "Root directory served over HTTP.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent download workers.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected one command, got %d", flagSet.NArg())}
	}

	command := strings.ToLower(flagSet.Arg(0))
	switch command {
	case app.CommandGenerate, app.CommandFetch, app.CommandAll:
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q: must be 'generate', 'fetch', or 'all'", command)}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Command:      command,
		EnvPath:      *envFlag,
		TemplatesDir: *templatesFlag,
		CatalogPath:  *catalogFlag,
		TFTPRoot:     *tftpRootFlag,
		HTTPRoot:     *httpRootFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", command)
	return config, false, nil
}
