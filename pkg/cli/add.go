package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	var (
		cfg       config
		text      string
		audioPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Aliases:     []string{"t"},
			Usage:       "Note text to remember (remaining arguments are used when omitted)",
			Destination: &text,
		},
		&cli.StringFlag{
			Name:        "audio",
			Aliases:     []string{"a"},
			Usage:       "Path to a voice recording to transcribe and remember",
			Destination: &audioPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, captureFlags(&cfg)...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Save a new memory from text or a voice recording",
		ArgsUsage: "[text...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if text == "" {
				text = strings.Join(c.Args().Slice(), " ")
			}
			if text != "" && audioPath != "" {
				return goerr.New("--text and --audio cannot be used together")
			}

			uc, closeFn, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var memory *model.Memory
			if audioPath != "" {
				f, err := os.Open(filepath.Clean(audioPath))
				if err != nil {
					return goerr.Wrap(err, "failed to open audio file", goerr.V("path", audioPath))
				}
				defer f.Close()

				memory, err = uc.InsertAudio(ctx, f, filepath.Base(audioPath))
				if err != nil {
					return userError(err, model.OperationSave)
				}
			} else {
				memory, err = uc.Insert(ctx, text, model.SourceText)
				if err != nil {
					return userError(err, model.OperationSave)
				}
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Saved memory %s\n", memory.ID)
			fmt.Fprintf(w, "Summary: %s\n", memory.Summary)
			if len(memory.Tasks) > 0 {
				fmt.Fprintf(w, "Tasks:   %s\n", strings.Join(memory.Tasks, ", "))
			}
			return nil
		},
	}
}
