package cli

import (
	"context"
	"errors"
	"io"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Version is the version reported by the CLI and the MCP server
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

// Option configures Run
type Option func(*cli.Command)

// WithWriter replaces standard output of commands
func WithWriter(w io.Writer) Option {
	return func(cmd *cli.Command) {
		cmd.Writer = w
	}
}

// WithErrWriter replaces the writer of progress indicators
func WithErrWriter(w io.Writer) Option {
	return func(cmd *cli.Command) {
		cmd.ErrWriter = w
	}
}

// operationError carries the user facing operation of a failed use case call
type operationError struct {
	err error
	op  model.Operation
}

func (e *operationError) Error() string { return e.err.Error() }
func (e *operationError) Unwrap() error { return e.err }

func userError(err error, op model.Operation) error {
	return &operationError{err: err, op: op}
}

func Run(ctx context.Context, argv []string, opts ...Option) *Error {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cli.Command{
		Name:    "echovault",
		Usage:   "Personal memory vault with hybrid search",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "info",
				Sources:     cli.EnvVars("ECHOVAULT_LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format (console, json)",
				Value:       "console",
				Sources:     cli.EnvVars("ECHOVAULT_LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger := logging.New(logLevel, c.Root().ErrWriter, logging.WithFormat(logFormat))
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			addCommand(),
			searchCommand(),
			chatCommand(),
			listCommand(),
			showCommand(),
			tasksCommand(),
			serveCommand(),
			exportCommand(),
		},
	}

	for _, opt := range opts {
		opt(cmd)
	}

	if err := cmd.Run(ctx, argv); err != nil {
		var opErr *operationError
		if errors.As(err, &opErr) {
			logging.From(ctx).Error("command failed", "error", opErr.err)
			return &Error{
				Code:    1,
				Message: model.UserMessage(opErr.err, opErr.op),
			}
		}

		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
