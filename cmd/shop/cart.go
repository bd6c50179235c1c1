package main

import (
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/boutique/internal/domain"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the shopping cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			renderCart(a.out, a.store.Cart(), a.store.CartTotal())
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <product-id>...",
			Short: "Add one entry per argument; repeat an ID to add it again",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				for _, arg := range args {
					p, err := a.resolveProduct(arg)
					if err != nil {
						return err
					}
					a.store.AddToCart(p)
					fmt.Fprintf(a.out, "Added %s to the cart.\n", p.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm <product-id>",
			Aliases: []string{"remove"},
			Short:   "Remove every entry of a product",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				p, err := a.resolveProduct(args[0])
				if err != nil {
					return err
				}
				a.store.RemoveFromCart(p.ID)
				fmt.Fprintf(a.out, "Removed %s from the cart.\n", p.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				a.store.ClearCart()
				fmt.Fprintln(a.out, "Cart cleared.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				renderCart(a.out, a.store.Cart(), a.store.CartTotal())
				return nil
			},
		},
	)
	return cmd
}

func newCheckoutCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := mail.ParseAddress(email); err != nil {
				return fmt.Errorf("%w: %q is not a valid email address", domain.ErrValidation, email)
			}
			items := a.store.Cart()
			if len(items) == 0 {
				return fmt.Errorf("%w: the cart is empty", domain.ErrValidation)
			}
			ids := make([]uuid.UUID, len(items))
			for i, p := range items {
				ids[i] = p.ID
			}

			order, notified, err := a.api.PlaceOrder(cmd.Context(), email, ids)
			if err != nil {
				return err
			}
			a.store.ClearCart()

			fmt.Fprintf(a.out, "Order %s placed: %d items, total %s.\n",
				order.ID, len(order.Lines), formatPrice(order.Total))
			if !notified {
				fmt.Fprintln(a.out, mutedStyle.Render("The shop was not emailed yet; your order is saved."))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "contact email for the order (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
