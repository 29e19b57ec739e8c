package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/agri-advisor/internal/app"
)

// History renders the diagnosis history panel.
type History struct{}

// NewHistory creates the history renderer.
func NewHistory() *History {
	return &History{}
}

func (h *History) Render(ctx context.Context, env *app.Env) (app.Panel, error) {
	history, err := env.Gateway.DiagnosisHistory(ctx)
	if err != nil {
		return app.Panel{}, err
	}

	if len(history) == 0 {
		markup := card.Render(heading.Render("Diagnosis History") + "\n" +
			"No diagnosis history found. Perform a diagnosis to see your history here.")
		return app.Panel{Markup: markup}, nil
	}

	var cards []string
	for _, item := range history {
		var b strings.Builder
		b.WriteString(subheading.Render(item.ReportTitle) + "\n")
		fmt.Fprintf(&b, "Result: %s (%.2f%%)\n", item.DiseaseName, item.Confidence*100)
		b.WriteString(muted.Render("Date: "+item.Timestamp.Local().Format("2 Jan 2006 15:04")) + "\n")
		b.WriteString(muted.Render(env.Gateway.BaseURL() + item.ImageURL))
		cards = append(cards, card.Render(b.String()))
	}

	markup := heading.Render("Diagnosis History") + "\n" + strings.Join(cards, "\n")
	return app.Panel{Markup: markup}, nil
}
