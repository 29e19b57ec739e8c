package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/gateway"
)

// Shopping renders the marketplace panel. Business users additionally see
// their own listings and an add-product action.
type Shopping struct{}

// NewShopping creates the marketplace renderer.
func NewShopping() *Shopping {
	return &Shopping{}
}

func (s *Shopping) Render(ctx context.Context, env *app.Env) (app.Panel, error) {
	products, err := env.Gateway.Products(ctx)
	if err != nil {
		return app.Panel{}, err
	}

	var b strings.Builder
	b.WriteString(heading.Render("Marketplace") + "\n")
	b.WriteString(renderProductList(products, "No products listed yet."))

	if env.User.IsBusiness() {
		mine, err := env.Gateway.MyProducts(ctx)
		if err != nil {
			return app.Panel{}, err
		}
		b.WriteString("\n" + subheading.Render("My Products") + "\n")
		b.WriteString(renderProductList(mine, "You have no listings yet."))
	}

	actions := []app.Action{
		{
			Key:    "b",
			Label:  "buy",
			Prompt: "Buy as <product-id>: <quantity>",
			Do: func(ctx context.Context, input string) error {
				id, qtyStr, err := splitIDPayload(input)
				if err != nil {
					return err
				}
				qty, err := strconv.Atoi(qtyStr)
				if err != nil || qty <= 0 {
					return fmt.Errorf("invalid quantity %q", qtyStr)
				}
				if _, err := env.Gateway.CreateOrder(ctx, id, qty); err != nil {
					return err
				}
				return env.Nav.Navigate(ctx, app.ViewShopping, "")
			},
		},
	}
	if env.User.IsBusiness() {
		actions = append(actions, app.Action{
			Key:    "a",
			Label:  "add product",
			Prompt: "List as <name>; <price>; <quantity>",
			Do: func(ctx context.Context, input string) error {
				req, err := parseProductInput(input)
				if err != nil {
					return err
				}
				if _, err := env.Gateway.CreateProduct(ctx, req); err != nil {
					return err
				}
				return env.Nav.Navigate(ctx, app.ViewShopping, "")
			},
		})
	}

	return app.Panel{Markup: b.String(), Actions: actions}, nil
}

func renderProductList(products []domain.Product, emptyMsg string) string {
	if len(products) == 0 {
		return card.Render(emptyMsg) + "\n"
	}
	var b strings.Builder
	for _, p := range products {
		var pb strings.Builder
		pb.WriteString(subheading.Render(fmt.Sprintf("#%d %s", p.ID, p.Name)) + "\n")
		if p.Description != "" {
			pb.WriteString(p.Description + "\n")
		}
		pb.WriteString(muted.Render(fmt.Sprintf("RM%.2f · %d in stock", p.Price, p.Quantity)))
		b.WriteString(card.Render(pb.String()) + "\n")
	}
	return b.String()
}

func parseProductInput(input string) (gateway.ProductCreate, error) {
	parts := strings.Split(input, ";")
	if len(parts) != 3 {
		return gateway.ProductCreate{}, fmt.Errorf("expected <name>; <price>; <quantity>, got %q", input)
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return gateway.ProductCreate{}, fmt.Errorf("empty product name")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || price < 0 {
		return gateway.ProductCreate{}, fmt.Errorf("invalid price %q", parts[1])
	}
	qty, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || qty < 0 {
		return gateway.ProductCreate{}, fmt.Errorf("invalid quantity %q", parts[2])
	}
	return gateway.ProductCreate{Name: name, Price: price, Quantity: qty}, nil
}
