package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xenking/kart-pricing/internal/domain/order"
	"github.com/xenking/kart-pricing/internal/domain/promotion"
	"github.com/xenking/kart-pricing/internal/quote"
)

var (
	accent      = lipgloss.Color("#D97706")
	dim         = lipgloss.Color("#6B7280")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle  = lipgloss.NewStyle().Foreground(dim).Width(34)
)

type scenario struct {
	label     string
	customer  order.Customer
	cart      []order.LineItem
	promotion string
}

func demoScenarios() []scenario {
	joe := order.Customer{Name: "John Doe", Fidelity: 0}
	ann := order.Customer{Name: "Ann Smith", Fidelity: 1100}

	price := decimal.RequireFromString
	cart := []order.LineItem{
		{Product: "banana", Quantity: 4, UnitPrice: price("0.5")},
		{Product: "apple", Quantity: 10, UnitPrice: price("1.5")},
		{Product: "watermelon", Quantity: 5, UnitPrice: price("5.0")},
	}
	bananaCart := []order.LineItem{
		{Product: "banana", Quantity: 30, UnitPrice: price("0.5")},
		{Product: "apple", Quantity: 10, UnitPrice: price("1.5")},
	}
	longOrder := make([]order.LineItem, 10)
	for i := range longOrder {
		longOrder[i] = order.LineItem{Product: strconv.Itoa(i), Quantity: 1, UnitPrice: price("1.0")}
	}

	return []scenario{
		{"joe, fruit cart, fidelity", joe, cart, promotion.FidelityName},
		{"ann, fruit cart, fidelity", ann, cart, promotion.FidelityName},
		{"joe, banana cart, bulk item", joe, bananaCart, promotion.BulkItemName},
		{"joe, long order, large order", joe, longOrder, promotion.LargeOrderName},
		{"joe, fruit cart, large order", joe, cart, promotion.LargeOrderName},
		{"joe, long order, best", joe, longOrder, promotion.BestName},
		{"ann, fruit cart, best", ann, cart, promotion.BestName},
		{"ann, long order, best", ann, longOrder, promotion.BestName},
	}
}

func newDemoCmd(load serviceLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Price the reference carts under each promotion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load()
			if err != nil {
				return err
			}
			return runDemo(cmd, svc, cmd.OutOrStdout())
		},
	}
}

func runDemo(cmd *cobra.Command, svc *quote.Service, w io.Writer) error {
	fmt.Fprintln(w, headerStyle.Render("Promotions"))
	for _, e := range svc.Promotions().Entries() {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(e.Name), promotion.Describe(e.Promotion))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render("Orders"))
	for _, s := range demoScenarios() {
		if _, ok := svc.Promotions().Lookup(s.promotion); !ok {
			fmt.Fprintf(w, "  %s skipped: %s disabled\n", labelStyle.Render(s.label), s.promotion)
			continue
		}
		res, err := svc.Quote(cmd.Context(), quote.Request{
			Customer:  s.customer,
			Items:     s.cart,
			Promotion: s.promotion,
		})
		if err != nil {
			return err
		}
		line := res.Summary
		if s.promotion == promotion.BestName && res.Applied != "" {
			line += " via " + res.Applied
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(s.label), line)
	}
	return nil
}
