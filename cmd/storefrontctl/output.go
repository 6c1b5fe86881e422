package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/overlay"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// formatPrice renders cents as dollars with thousands separators.
func formatPrice(cents int64) string {
	return "$" + humanize.FormatFloat("#,###.##", float64(cents)/100)
}

func printProducts(w io.Writer, products []domain.Product) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-4s %-24s %10s", "ID", "NAME", "PRICE")))
	for _, p := range products {
		fmt.Fprintf(w, "%-4s %-24s %10s\n", p.ID, p.Name, formatPrice(p.Price))
	}
}

func printProduct(w io.Writer, p domain.Product) {
	fmt.Fprintln(w, headerStyle.Render(p.Name))
	fmt.Fprintf(w, "  id:    %s\n", p.ID)
	fmt.Fprintf(w, "  price: %s\n", formatPrice(p.Price))
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render(p.Description))
	}
}

func printItem(w io.Writer, it domain.CartItem) {
	fmt.Fprintf(w, "%-10s %-24s %3d x %10s = %10s\n",
		it.ID, it.Name, it.Quantity, formatPrice(it.Price), formatPrice(it.Subtotal()))
}

func printCart(w io.Writer, cart domain.Cart) {
	if len(cart.Items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("cart is empty"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s %-24s %s", "LINE", "PRODUCT", "QTY")))
	for _, it := range cart.Items {
		printItem(w, it)
	}
	fmt.Fprintf(w, "%d items, total %s\n", cart.ItemCount, formatPrice(cart.Total))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
}

func describeState(s overlay.State) string {
	if !s.IsOpen() {
		return "none"
	}
	parts := []string{s.Kind.String()}
	if s.TargetID != "" {
		parts = append(parts, s.TargetID)
	}
	return strings.Join(parts, " ")
}

func printResolution(w io.Writer, r overlay.Resolution) {
	fmt.Fprintf(w, "overlay: %s (%s)\n", describeState(r.State), r.Status)
	switch {
	case r.Error != nil:
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("error: %s (%s)", r.Error.Message, r.Error.Code)))
	case r.Product != nil:
		printProduct(w, *r.Product)
	case r.Cart != nil:
		printCart(w, *r.Cart)
	}
}
