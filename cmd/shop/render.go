package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

var (
	headingStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// shortID is the first block of a UUID; commands accept it as a prefix.
func shortID(p domain.Product) string {
	return p.ID.String()[:8]
}

func formatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// renderPage prints one storefront page with its paging line and the tags
// the shopper can filter by.
func renderPage(w io.Writer, view catalog.Page, selected []string) {
	if view.TotalItems == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No products match the selected tags."))
	} else {
		renderProducts(w, view.Items)
	}

	fmt.Fprintf(w, "Page %d of %d · %d per page · %d products\n",
		view.Page, max(view.TotalPages, 1), view.PageSize, view.TotalItems)
	renderTagBar(w, view.AvailableTags, selected)
}

func renderProducts(w io.Writer, products []domain.Product) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PRICE", "TAGS")
	for _, p := range products {
		t.Row(shortID(p), p.Name, formatPrice(p.Price), strings.Join(domain.Labels(p.Tags), ", "))
	}
	fmt.Fprintln(w, t.Render())
}

// renderTagBar lists the available tags grouped by category, marking the
// selected ones.
func renderTagBar(w io.Writer, tags []domain.Tag, selected []string) {
	if len(tags) == 0 {
		return
	}
	byCategory := make(map[string][]string)
	var categories []string
	for _, t := range tags {
		if _, ok := byCategory[t.Category]; !ok {
			categories = append(categories, t.Category)
		}
		label := t.Label
		if slices.Contains(selected, t.Label) {
			label = selectedStyle.Render("[" + t.Label + "]")
		}
		byCategory[t.Category] = append(byCategory[t.Category], label)
	}
	slices.Sort(categories)

	fmt.Fprintln(w, headingStyle.Render("Tags"))
	for _, c := range categories {
		fmt.Fprintf(w, "  %s: %s\n", c, strings.Join(byCategory[c], "  "))
	}
}

func renderCart(w io.Writer, items []domain.Product, total decimal.Decimal) {
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Your cart is empty."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "NAME", "PRICE")
	for i, p := range items {
		t.Row(fmt.Sprint(i+1), shortID(p), p.Name, formatPrice(p.Price))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%s %s\n", headingStyle.Render("Total"), formatPrice(total))
}

func renderSuggestions(w io.Writer, s catalog.Suggestions) {
	if len(s.Existing) == 0 && s.Create == "" {
		fmt.Fprintln(w, mutedStyle.Render("No suggestions."))
		return
	}
	for _, t := range s.Existing {
		fmt.Fprintf(w, "  %s\n", t.Label)
	}
	if s.Create != "" {
		fmt.Fprintf(w, "  + create %q\n", s.Create)
	}
}

func renderOrders(w io.Writer, orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No orders yet."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "EMAIL", "ITEMS", "TOTAL", "PLACED", "NOTIFIED")
	for _, o := range orders {
		notified := "no"
		if o.NotifiedAt != nil {
			notified = "yes"
		}
		t.Row(o.ID.String()[:8], o.Email, fmt.Sprint(len(o.Lines)), formatPrice(o.Total),
			o.CreatedAt.Local().Format("2006-01-02 15:04"), notified)
	}
	fmt.Fprintln(w, t.Render())
}
