package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhijitramesh/echovault/pkg/model"
	"github.com/abhijitramesh/echovault/pkg/usecase/memory"
	"github.com/briandowns/spinner"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg    config
		query  string
		format string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Question about your memories (remaining arguments are used when omitted)",
			Destination: &query,
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
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Ask a question and get an answer grounded in your memories",
		ArgsUsage: "[query...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if query == "" {
				query = strings.Join(c.Args().Slice(), " ")
			}

			uc, closeFn, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := runSearch(ctx, uc, query, c.Root().ErrWriter)
			if err != nil {
				return userError(err, model.OperationSearch)
			}

			return render(c.Root().Writer, format, newSearchView(result), func(w io.Writer) error {
				writeSearchResult(w, result)
				return nil
			})
		},
	}
}

// runSearch runs a search while showing a spinner on progress
func runSearch(ctx context.Context, uc *memory.UseCase, query string, progress io.Writer) (*model.SearchResult, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(progress))
	s.Suffix = " Searching memories..."
	s.Start()
	defer s.Stop()

	return uc.Search(ctx, query)
}

type scoredMemoryView struct {
	Score  float64     `json:"score" yaml:"score"`
	Origin string      `json:"origin" yaml:"origin"`
	Memory *memoryView `json:"memory" yaml:"memory"`
}

type searchView struct {
	Answer   string              `json:"answer" yaml:"answer"`
	Memories []*scoredMemoryView `json:"memories" yaml:"memories"`
}

func newSearchView(result *model.SearchResult) *searchView {
	view := &searchView{
		Answer:   result.Answer,
		Memories: make([]*scoredMemoryView, 0, len(result.Memories)),
	}
	for _, sm := range result.Memories {
		view.Memories = append(view.Memories, &scoredMemoryView{
			Score:  sm.Score,
			Origin: string(sm.Origin),
			Memory: newMemoryView(sm.Memory),
		})
	}
	return view
}

func writeSearchResult(w io.Writer, result *model.SearchResult) {
	fmt.Fprintf(w, "%s\n", result.Answer)
	if len(result.Memories) == 0 {
		return
	}

	fmt.Fprintf(w, "\nSources:\n")
	for i, sm := range result.Memories {
		fmt.Fprintf(w, "  [%d] %s (%s, %.2f) %s: %s\n",
			i+1,
			sm.Memory.CreatedAt.Format("2006-01-02"),
			sm.Origin,
			sm.Score,
			sm.Memory.ID,
			sm.Memory.Summary,
		)
	}
}
