package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Download the product catalog into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := a.api.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			a.store.ReplaceProducts(products)
			fmt.Fprintf(a.out, "Synced %d products.\n", len(products))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the current storefront page",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			renderPage(a.out, a.store.View(), a.store.SelectedTags())
			return nil
		},
	}
}

func newFilterCmd(a *app) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "filter [label...]",
		Short: "Toggle filter tags; products must carry every selected tag",
		RunE: func(_ *cobra.Command, args []string) error {
			if clearAll {
				for _, label := range slices.Clone(a.store.SelectedTags()) {
					a.store.ToggleFilterTag(label)
				}
			}
			for _, label := range args {
				a.store.ToggleFilterTag(label)
			}
			renderPage(a.out, a.store.View(), a.store.SelectedTags())
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "deselect every tag first")
	return cmd
}

func newPageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "page <n>",
		Short: "Jump to storefront page n",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: page %q is not a number", domain.ErrValidation, args[0])
			}
			if err := a.store.SetPage(n); err != nil {
				return err
			}
			renderPage(a.out, a.store.View(), a.store.SelectedTags())
			return nil
		},
	}
}

func newPerPageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "per-page <n>",
		Short: fmt.Sprintf("Set the page size (one of %v)", catalog.PageSizes),
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || !slices.Contains(catalog.PageSizes, n) {
				return fmt.Errorf("%w: page size must be one of %v", domain.ErrValidation, catalog.PageSizes)
			}
			if err := a.store.SetPageSize(n); err != nil {
				return err
			}
			renderPage(a.out, a.store.View(), a.store.SelectedTags())
			return nil
		},
	}
}
