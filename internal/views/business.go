package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/agri-advisor/internal/app"
)

// BusinessProfile renders the business dashboard: income, sell
// quantities, and product management. Business accounts only; the router
// hides the view from public users.
type BusinessProfile struct{}

// NewBusinessProfile creates the business-profile renderer.
func NewBusinessProfile() *BusinessProfile {
	return &BusinessProfile{}
}

func (bp *BusinessProfile) Render(ctx context.Context, env *app.Env) (app.Panel, error) {
	products, err := env.Gateway.MyProducts(ctx)
	if err != nil {
		return app.Panel{}, err
	}

	var income strings.Builder
	income.WriteString(subheading.Render("Income") + "\n")
	income.WriteString(muted.Render("Coming Soon."))

	var quantities strings.Builder
	quantities.WriteString(subheading.Render("Product Sell Quantity") + "\n")
	if len(products) == 0 {
		quantities.WriteString(muted.Render("No products listed yet."))
	}
	for _, p := range products {
		fmt.Fprintf(&quantities, "%s: %d in stock\n", p.Name, p.Quantity)
	}

	var add strings.Builder
	add.WriteString(subheading.Render("Add Product") + "\n")
	add.WriteString(muted.Render("Press [a] to list a new product."))

	markup := heading.Render("Business Profile") + "\n" +
		card.Render(income.String()) + "\n" +
		card.Render(quantities.String()) + "\n" +
		card.Render(add.String())

	actions := []app.Action{
		{
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
				return env.Nav.Navigate(ctx, app.ViewBusinessProfile, "")
			},
		},
	}

	return app.Panel{Markup: markup, Actions: actions}, nil
}
