package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const chatAddCommand = "/add"

func chatCommand() *cli.Command {
	var (
		cfg         config
		historyFile string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "history-file",
			Usage:       "File to keep the prompt history (empty disables history)",
			Value:       defaultHistoryFile(),
			Sources:     cli.EnvVars("ECHOVAULT_HISTORY_FILE"),
			Destination: &historyFile,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, captureFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive question answering over your memories",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closeFn, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				HistoryFile:     historyFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          c.Root().Writer,
				Stderr:          c.Root().ErrWriter,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to start prompt")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Ask anything about your memories. Use '/add <text>' to save a note, 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				if done := chatTurn(ctx, uc, w, c.Root().ErrWriter, line); done {
					return nil
				}
			}
		},
	}
}

// chatTurn handles a single line of input. It returns true when the session should end.
func chatTurn(ctx context.Context, uc *memory.UseCase, w, progress io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false

	case line == "exit" || line == "quit":
		return true

	case line == chatAddCommand || strings.HasPrefix(line, chatAddCommand+" "):
		m, err := uc.Insert(ctx, strings.TrimSpace(strings.TrimPrefix(line, chatAddCommand)), model.SourceText)
		if err != nil {
			logging.From(ctx).Error("failed to save memory", "error", err)
			fmt.Fprintf(w, "%s\n\n", model.UserMessage(err, model.OperationSave))
			return false
		}
		fmt.Fprintf(w, "Saved memory %s: %s\n\n", m.ID, m.Summary)
		return false

	default:
		result, err := runSearch(ctx, uc, line, progress)
		if err != nil {
			logging.From(ctx).Error("failed to search memories", "error", err)
			fmt.Fprintf(w, "%s\n\n", model.UserMessage(err, model.OperationSearch))
			return false
		}
		writeSearchResult(w, result)
		fmt.Fprintln(w)
		return false
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".echovault_history")
}
