package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg    config
		offset int64
		limit  int64
		format string
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "offset",
			Usage:       "Offset for pagination",
			Value:       0,
			Sources:     cli.EnvVars("ECHOVAULT_LIST_OFFSET"),
			Destination: &offset,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of memories to list (0 lists all)",
			Value:       20,
			Sources:     cli.EnvVars("ECHOVAULT_LIST_LIMIT"),
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       formatFlagUsage(),
			Value:       formatText,
			Destination: &format,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List stored memories, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closeFn, err := cfg.newStoreUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			memories, err := uc.List(ctx, memory.ListOptions{
				Offset: int(offset),
				Limit:  int(limit),
			})
			if err != nil {
				return userError(err, model.OperationList)
			}

			return render(c.Root().Writer, format, newMemoryViews(memories), func(w io.Writer) error {
				if len(memories) == 0 {
					fmt.Fprintf(w, "No memories stored yet.\n")
					return nil
				}
				for _, m := range memories {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						m.ID, m.CreatedAt.Format("2006-01-02 15:04"), m.Source, m.Summary)
				}
				return nil
			})
		},
	}
}

func showCommand() *cli.Command {
	var (
		cfg      config
		memoryID model.MemoryID
		format   string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "memory-id",
			Aliases:     []string{"id"},
			Usage:       "Memory ID to show",
			Sources:     cli.EnvVars("ECHOVAULT_MEMORY_ID"),
			Destination: (*string)(&memoryID),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       formatFlagUsage(),
			Value:       formatText,
			Destination: &format,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show detailed information of a specific memory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closeFn, err := cfg.newStoreUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			m, err := uc.Show(ctx, memoryID)
			if err != nil {
				return userError(err, model.OperationList)
			}

			view := newMemoryView(m)
			return render(c.Root().Writer, format, view, func(w io.Writer) error {
				writeMemory(w, view)
				return nil
			})
		},
	}
}

func tasksCommand() *cli.Command {
	var (
		cfg    config
		format string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       formatFlagUsage(),
			Value:       formatText,
			Destination: &format,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "tasks",
		Usage: "List action items extracted from every memory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closeFn, err := cfg.newStoreUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			tasks, err := uc.Tasks(ctx)
			if err != nil {
				return userError(err, model.OperationList)
			}
			if tasks == nil {
				tasks = []*model.Task{}
			}

			return render(c.Root().Writer, format, tasks, func(w io.Writer) error {
				if len(tasks) == 0 {
					fmt.Fprintf(w, "No tasks found.\n")
					return nil
				}
				for _, t := range tasks {
					fmt.Fprintf(w, "- %s (%s, %s)\n", t.Task, t.CreatedAt.Format("2006-01-02"), t.MemoryID)
				}
				return nil
			})
		},
	}
}
