package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/abhijitramesh/echovault/pkg/service/mcp"
	"github.com/abhijitramesh/echovault/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	var (
		cfg       config
		transport string
		addr      string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "transport",
			Usage:       "MCP transport (stdio, http)",
			Value:       "stdio",
			Sources:     cli.EnvVars("ECHOVAULT_MCP_TRANSPORT"),
			Destination: &transport,
		},
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address of the http transport",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("ECHOVAULT_MCP_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, captureFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve memory tools to agent hosts over the Model Context Protocol",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closeFn, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			server := mcp.NewServer(uc, Version)

			switch transport {
			case "stdio":
				logging.From(ctx).Info("serving MCP over stdio")
				if err := server.RunStdio(ctx); err != nil {
					return goerr.Wrap(err, "stdio server stopped")
				}
				return nil

			case "http":
				return serveHTTP(ctx, addr, server.HTTPHandler())

			default:
				return goerr.New("unsupported transport",
					goerr.V("transport", transport),
					goerr.V("supported", []string{"stdio", "http"}))
			}
		},
	}
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.From(ctx).Info("serving MCP over http", "addr", addr, "path", "/mcp")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "http server stopped", goerr.V("addr", addr))
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown http server")
		}
		return nil
	}
}
