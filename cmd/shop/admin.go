package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as the shop admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(a.out, "Password: ")
				line, err := bufio.NewReader(a.in).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			sess, err := a.api.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := a.state.SetToken(cmd.Context(), sess.Token, sess.ExpiresAt); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in until %s.\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.api.Logout()
			if err := a.state.ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage products, tags and orders (requires login)",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Cobra runs only the nearest PersistentPreRunE.
			if err := a.open(cmd.Context(), cmd.ErrOrStderr()); err != nil {
				return err
			}
			return a.requireLogin()
		},
	}
	cmd.AddCommand(newAdminTagCmd(a), newAdminProductCmd(a), newAdminOrdersCmd(a), newAdminExportCmd(a))
	return cmd
}

// ---- tags ------------------------------------------------------------------

func newAdminTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "List, suggest, create and delete tags",
	}

	var category string
	list := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List tags, optionally by category and label prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			tags, err := a.api.SearchTags(cmd.Context(), category, prefix)
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintf(a.out, "%s  %-8s %s\n", t.ID, t.Category, t.Label)
			}
			return nil
		},
	}
	list.Flags().StringVarP(&category, "category", "c", "", "only this category")

	suggest := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Show the tags a product form would suggest for query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			picker := catalog.NewTagPicker(a.api, a.logger)
			renderSuggestions(a.out, picker.Suggest(cmd.Context(), category, args[0]))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <label>",
		Short: "Use the tag labelled label, creating it when it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			picker := catalog.NewTagPicker(a.api, a.logger)
			creates := picker.Suggest(cmd.Context(), category, args[0]).Create != ""
			t, added, err := picker.Add(cmd.Context(), category, args[0])
			if err != nil {
				return err
			}
			switch {
			case !added:
				fmt.Fprintln(a.out, "Nothing to add.")
			case creates:
				fmt.Fprintf(a.out, "Created %s tag %q (%s).\n", t.Category, t.Label, t.ID)
			default:
				fmt.Fprintf(a.out, "Tag %q already exists (%s).\n", t.Label, t.ID)
			}
			return nil
		},
	}
	for _, c := range []*cobra.Command{suggest, add} {
		c.Flags().StringVarP(&category, "category", "c", "", "tag category (required)")
		_ = c.MarkFlagRequired("category")
	}

	rm := &cobra.Command{
		Use:   "rm <tag-id>",
		Short: "Delete a tag that no product uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUUID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteTag(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Tag deleted.")
			return nil
		},
	}

	var newLabel, newCategory string
	rename := &cobra.Command{
		Use:   "rename <tag-id>",
		Short: "Change a tag's label or category; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveUUID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("label") && !flags.Changed("category") {
				return fmt.Errorf("%w: give --label, --category or both", domain.ErrValidation)
			}
			label, category := newLabel, newCategory
			if !flags.Changed("label") || !flags.Changed("category") {
				cur, err := a.findTag(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !flags.Changed("label") {
					label = cur.Label
				}
				if !flags.Changed("category") {
					category = cur.Category
				}
			}

			t, err := a.api.UpdateTag(cmd.Context(), id, label, category)
			if err != nil {
				return err
			}
			a.retagLocal(t)
			fmt.Fprintf(a.out, "Tag %s is now %s %q.\n", t.ID, t.Category, t.Label)
			return nil
		},
	}
	rename.Flags().StringVar(&newLabel, "label", "", "new label")
	rename.Flags().StringVar(&newCategory, "category", "", "new category")

	cmd.AddCommand(list, suggest, add, rename, rm)
	return cmd
}

func (a *app) findTag(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tags, err := a.api.ListTags(ctx, "")
	if err != nil {
		return domain.Tag{}, err
	}
	for _, t := range tags {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Tag{}, fmt.Errorf("%w: tag %s", domain.ErrNotFound, id)
}

// retagLocal rewrites the cached products carrying t so the local tag bar
// matches the renamed tag without a full sync.
func (a *app) retagLocal(t domain.Tag) {
	for _, p := range a.store.Products() {
		i := slices.IndexFunc(p.Tags, func(cur domain.Tag) bool { return cur.ID == t.ID })
		if i < 0 {
			continue
		}
		p.Tags = slices.Clone(p.Tags)
		p.Tags[i] = t
		a.store.UpdateProduct(p)
	}
}

// ---- products --------------------------------------------------------------

type productFlags struct {
	name        string
	description string
	price       string
	image       string
	tags        []string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.description, "description", "", "product description")
	cmd.Flags().StringVar(&f.price, "price", "", "price, e.g. 12.50")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "category:label; repeat for several tags")
}

// selectTags connects each category:label flag to a tag, creating missing
// tags through the API, and returns the selection as draft references.
func (a *app) selectTags(ctx context.Context, flags []string) ([]domain.TagRef, error) {
	picker := catalog.NewTagPicker(a.api, a.logger)
	for _, raw := range flags {
		category, label, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(category) == "" || strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("%w: tag %q must look like category:label", domain.ErrValidation, raw)
		}
		if _, _, err := picker.Add(ctx, strings.TrimSpace(category), label); err != nil {
			return nil, err
		}
	}
	return picker.SelectedRefs(), nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q is not a number", domain.ErrValidation, raw)
	}
	return price, nil
}

func readImage(path string) (*domain.ImageUpload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &domain.ImageUpload{Filename: filepath.Base(path), Data: data}, nil
}

func newAdminProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Create, update and delete products",
	}

	var addFlags productFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, err := parsePrice(addFlags.price)
			if err != nil {
				return err
			}
			image, err := readImage(addFlags.image)
			if err != nil {
				return err
			}
			refs, err := a.selectTags(cmd.Context(), addFlags.tags)
			if err != nil {
				return err
			}

			draft := domain.ProductDraft{
				Name:        addFlags.name,
				Description: addFlags.description,
				Price:       price,
				Tags:        refs,
			}
			p, err := catalog.NewAdmin(a.api, a.store).CreateProduct(cmd.Context(), draft, image)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s (%s).\n", p.Name, shortID(p))
			return nil
		},
	}
	addFlags.register(add)
	add.Flags().StringVar(&addFlags.image, "image", "", "path to a JPEG, PNG, GIF or WebP image")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("price")

	var updFlags productFlags
	update := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Change a product; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := a.resolveProduct(args[0])
			if err != nil {
				return err
			}
			// Edit the server's copy; the local one may predate another
			// admin's change.
			cur, err := a.api.GetProduct(cmd.Context(), local.ID)
			if err != nil {
				return err
			}
			draft := domain.ProductDraft{
				Name:        cur.Name,
				Description: cur.Description,
				Price:       cur.Price,
				Tags:        make([]domain.TagRef, len(cur.Tags)),
			}
			for i, t := range cur.Tags {
				draft.Tags[i] = domain.TagRef{Label: t.Label, Category: t.Category}
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				draft.Name = updFlags.name
			}
			if flags.Changed("description") {
				draft.Description = updFlags.description
			}
			if flags.Changed("price") {
				if draft.Price, err = parsePrice(updFlags.price); err != nil {
					return err
				}
			}
			if flags.Changed("tag") {
				if draft.Tags, err = a.selectTags(cmd.Context(), updFlags.tags); err != nil {
					return err
				}
			}

			p, err := catalog.NewAdmin(a.api, a.store).UpdateProduct(cmd.Context(), cur.ID, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s (%s).\n", p.Name, shortID(p))
			return nil
		},
	}
	updFlags.register(update)

	rm := &cobra.Command{
		Use:   "rm <product-id>",
		Short: "Delete a product and its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolveProduct(args[0])
			if err != nil {
				return err
			}
			if err := catalog.NewAdmin(a.api, a.store).DeleteProduct(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s.\n", p.Name)
			return nil
		},
	}

	cmd.AddCommand(add, update, rm)
	return cmd
}

// ---- orders ----------------------------------------------------------------

func newAdminOrdersCmd(a *app) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List placed orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.api.ListOrders(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			renderOrders(a.out, res.Data)
			fmt.Fprintf(a.out, "Page %d of %d · %d orders\n",
				res.Pagination.Page, max(res.Pagination.TotalPages, 1), res.Pagination.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultLimit, "orders per page")
	return cmd
}

func newAdminExportCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every order line as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" || output == "-" {
				return a.api.ExportOrders(cmd.Context(), format, a.out)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := a.api.ExportOrders(cmd.Context(), format, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s.\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (stdout when empty)")
	return cmd
}
