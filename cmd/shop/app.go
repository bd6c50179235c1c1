package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/client"
	"github.com/pkordes/boutique/internal/config"
	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/logging"
	"github.com/pkordes/boutique/internal/snapshot"
)

// app is the state shared by every command for one invocation.
type app struct {
	out io.Writer
	in  io.Reader

	logger    *slog.Logger
	logCloser io.Closer
	state     *snapshot.Store
	api       *client.Client
	store     *catalog.Store
}

// open loads configuration and opens the local state. It runs before every
// command.
func (a *app) open(ctx context.Context, errOut io.Writer) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	a.logger, a.logCloser = logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}, errOut)

	a.state, err = snapshot.Open(cfg.StateDir, a.logger)
	if err != nil {
		return fmt.Errorf("open local state in %s: %w", cfg.StateDir, err)
	}

	token, _, err := a.state.Token(ctx)
	if err != nil {
		a.logger.Warn("saved session unreadable", "error", err)
	}
	a.api, err = client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(a.logger),
		client.WithToken(token),
	)
	if err != nil {
		return err
	}

	a.store = catalog.NewStore(ctx, a.state, a.logger)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.state != nil {
		errs = append(errs, a.state.Close())
		a.state = nil
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
		a.logCloser = nil
	}
	return errors.Join(errs...)
}

// requireLogin fails early when there is no saved session.
func (a *app) requireLogin() error {
	if a.api.Token() == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// resolveProduct finds a product in the local catalog by full ID or by a
// unique ID prefix.
func (a *app) resolveProduct(arg string) (domain.Product, error) {
	if id, err := uuid.Parse(arg); err == nil {
		if p, ok := a.store.Product(id); ok {
			return p, nil
		}
		return domain.Product{}, fmt.Errorf("%w: product %s is not in the local catalog; run `shop sync`", domain.ErrNotFound, arg)
	}

	prefix := strings.ToLower(strings.TrimSpace(arg))
	if len(prefix) < 4 {
		return domain.Product{}, fmt.Errorf("%w: product ID %q is too short", domain.ErrValidation, arg)
	}
	var matches []domain.Product
	for _, p := range a.store.Products() {
		if strings.HasPrefix(p.ID.String(), prefix) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Product{}, fmt.Errorf("%w: no product with ID prefix %q; run `shop sync`", domain.ErrNotFound, arg)
	case 1:
		return matches[0], nil
	default:
		return domain.Product{}, fmt.Errorf("%w: ID prefix %q matches %d products", domain.ErrValidation, arg, len(matches))
	}
}

// resolveUUID accepts a full ID only; used for records that are not cached
// locally, such as tags.
func resolveUUID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid ID", domain.ErrValidation, arg)
	}
	return id, nil
}

// execute runs one invocation with args and releases the local state
// afterwards, whether or not the command failed.
func execute(ctx context.Context, args []string, out, errOut io.Writer, in io.Reader) error {
	a := &app{out: out, in: in}
	root := newRootCmd(a, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

// newRootCmd builds the command tree. a.out receives command output, errOut
// receives logs, and a.in is read for prompts.
func newRootCmd(a *app, errOut io.Writer) *cobra.Command {

	root := &cobra.Command{
		Use:           "shop",
		Short:         "Browse the Boutique catalog and manage it as an admin",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), errOut)
		},
	}
	root.SetOut(a.out)
	root.SetErr(errOut)
	root.SetIn(a.in)

	root.AddCommand(
		newSyncCmd(a),
		newListCmd(a),
		newFilterCmd(a),
		newPageCmd(a),
		newPerPageCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newAdminCmd(a),
	)
	return root
}
