package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pagebound/bookstore-server/internal/auth"
	"github.com/pagebound/bookstore-server/internal/config"
	"github.com/pagebound/bookstore-server/internal/logger"
	"github.com/pagebound/bookstore-server/internal/service"
	"github.com/pagebound/bookstore-server/internal/store/sqlite"
)

type rootOptions struct {
	dataPath string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bookstorectl",
		Short:         "Operator tool for the bookstore server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dataPath, "data-path", "", "Directory holding the database and token key (default: DATA_PATH or ~/Bookstore/data)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newCreateAdminCmd(opts),
		newSeedCmd(opts),
		newHashPasswordCmd(),
	)
	return cmd
}

// env holds what the subcommands operate on.
type env struct {
	cfg     *config.Config
	store   *sqlite.Store
	auth    *service.AuthService
	catalog *service.CatalogService
	logger  *slog.Logger
}

func (e *env) Close() error {
	return e.store.Close()
}

// openEnv loads configuration the way the server does, then opens the
// database it points at.
func openEnv(opts *rootOptions) (*env, error) {
	var args []string
	if opts.dataPath != "" {
		args = append(args, "--data-path", opts.dataPath)
	}
	cfg, err := config.Load(append(args, "--env-file", ""))
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(opts.logLevel),
		Environment: cfg.App.Environment,
	}).Logger

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := sqlite.Open(cfg.Data.DatabasePath(), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	key, err := tokenKey(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &env{
		cfg:     cfg,
		store:   st,
		auth:    service.NewAuthService(st, tokens, log),
		catalog: service.NewCatalogService(st, log),
		logger:  log,
	}, nil
}

func tokenKey(cfg *config.Config) ([]byte, error) {
	if cfg.Auth.TokenKeyHex != "" {
		return auth.DecodeKey(cfg.Auth.TokenKeyHex)
	}
	return auth.LoadOrGenerateKey(cfg.Data.BasePath)
}

// readPassword prompts on out and reads a password without echo when in is
// a terminal, or a single line otherwise.
func readPassword(in *os.File, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
