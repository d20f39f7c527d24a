package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/octobees/cardcrm/internal/config"
	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/logging"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/phone"
	"github.com/octobees/cardcrm/internal/templates"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardctl",
		Short:         "Operator tools for the card CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newHashPasswordCmd(),
		newNormalizeCmd(),
		newSplitCmd(),
		newResolveCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for OPERATOR_PASSWORD_HASH",
		Long: `Reads the operator password and prints its bcrypt hash.

On a terminal the password is read twice without echo. Otherwise the first
line of stdin is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Confirm: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		if len(first) == 0 {
			return "", errors.New("password must not be empty")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <numbers>",
		Short: "Split a phone field and show each canonical number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates := phone.Candidates(args[0])
			if len(candidates) == 0 {
				return errors.New("no dialable number found")
			}
			out := cmd.OutOrStdout()
			for _, c := range candidates {
				region := c.Region
				if region == "" {
					region = "-"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\tvalid=%t mobile=%t\n", c.Raw, c.Number, region, c.Valid, c.Mobile)
			}
			return nil
		},
	}
}

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split <numbers>",
		Short: "Split a phone field into candidate numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, piece := range phone.Split(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), piece)
			}
			return nil
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <type> <value>",
		Short: "Resolve a channel value to a link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, ok := entity.ParseChannelType(strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf("unknown link type %q", args[0])
			}
			uri, ok := links.Resolve(channel, args[1])
			if !ok {
				return errors.New("value does not resolve to a link")
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored contacts as a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContacts(cmd.Context(), func(svc *service.ContactsService) error {
				data, err := svc.Export()
				if err != nil {
					return err
				}
				if out == "" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Prepend the contacts of a JSON backup to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			return withContacts(cmd.Context(), func(svc *service.ContactsService) error {
				summary, err := svc.Import(cmd.Context(), data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d contacts, %d total\n", summary.Imported, summary.Total)
				return nil
			})
		},
	}
}

// withContacts opens the configured store, loads the collection and runs fn
// with a service whose writes are persisted.
func withContacts(ctx context.Context, fn func(*service.ContactsService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	kv, closeKV, err := repository.OpenKV(openCtx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	store := repository.NewContactStore(logger)
	if err := store.Load(openCtx, kv, cfg.StorageKey); err != nil {
		return err
	}
	store.Observe(repository.NewPersistObserver(kv, cfg.StorageKey, logger))

	set, err := templates.Load(cfg.TemplatesFile)
	if err != nil {
		return err
	}
	logger.Debug("store opened", zap.String("driver", cfg.StorageDriver), zap.Int("contacts", len(store.All())))
	return fn(service.NewContactsService(store, set, service.WithLogger(logger)))
}
