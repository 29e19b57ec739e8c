package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/domain"
)

// Diagnosis renders the AI diagnosis panel: language selection, image
// submission, and the most recent report.
type Diagnosis struct {
	locator Locator

	mu       sync.Mutex
	language string
	report   *domain.DiagnosisReport
	lastErr  error
}

// NewDiagnosis creates the diagnosis renderer.
func NewDiagnosis(locator Locator, defaultLanguage string) *Diagnosis {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Diagnosis{locator: locator, language: defaultLanguage}
}

var languageNames = map[string]string{
	"en": "English",
	"ms": "Bahasa Malaysia",
	"zh": "Chinese (简体中文)",
}

// Render shows the uploader card and, below it, the latest report.
func (d *Diagnosis) Render(_ context.Context, env *app.Env) (app.Panel, error) {
	d.mu.Lock()
	language := d.language
	report := d.report
	lastErr := d.lastErr
	d.mu.Unlock()

	var b strings.Builder
	b.WriteString(heading.Render("AI Diagnosis"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Report language: %s\n", languageNames[language])
	b.WriteString(muted.Render("Submit a leaf photo for analysis.") + "\n")
	if lastErr != nil {
		b.WriteString("\n" + errText.Render(lastErr.Error()) + "\n")
	}
	if report != nil {
		b.WriteString("\n" + renderReport(report, env.Gateway.BaseURL()))
	}

	actions := []app.Action{
		{
			Key:    "u",
			Label:  "upload photo",
			Prompt: "Path to leaf photo",
			Do: func(ctx context.Context, input string) error {
				return d.submit(ctx, env, strings.TrimSpace(input))
			},
		},
		{
			Key:    "l",
			Label:  "report language",
			Prompt: "Language (en/ms/zh)",
			Do: func(ctx context.Context, input string) error {
				return d.setLanguage(ctx, env, strings.TrimSpace(input))
			},
		},
	}

	return app.Panel{Markup: card.Render(b.String()), Actions: actions}, nil
}

// submit gathers coordinates, posts the multipart payload, and stores the
// report for the next render. Failures land inline in the panel.
func (d *Diagnosis) submit(ctx context.Context, env *app.Env, imagePath string) error {
	if imagePath == "" {
		return nil
	}

	lat, lon, err := d.locator.Locate(ctx)
	if err != nil {
		d.setError(err)
		return env.Nav.Navigate(ctx, app.ViewDiagnosis, "")
	}

	d.mu.Lock()
	language := d.language
	d.mu.Unlock()

	report, err := env.Gateway.Diagnose(ctx, domain.DiagnosisRequest{
		ImagePath: imagePath,
		Latitude:  lat,
		Longitude: lon,
		Language:  language,
	})
	if err != nil {
		d.setError(err)
	} else {
		d.mu.Lock()
		d.report = report
		d.lastErr = nil
		d.mu.Unlock()
	}
	return env.Nav.Navigate(ctx, app.ViewDiagnosis, "")
}

func (d *Diagnosis) setLanguage(ctx context.Context, env *app.Env, lang string) error {
	if _, ok := languageNames[lang]; ok {
		d.mu.Lock()
		d.language = lang
		d.mu.Unlock()
	}
	return env.Nav.Navigate(ctx, app.ViewDiagnosis, "")
}

func (d *Diagnosis) setError(err error) {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}

func renderReport(report *domain.DiagnosisReport, baseURL string) string {
	var b strings.Builder
	b.WriteString(subheading.Render(report.Title) + "\n\n")
	b.WriteString(subheading.Render("Diagnosis Summary") + "\n")
	b.WriteString(report.DiagnosisSummary + "\n\n")
	b.WriteString(subheading.Render("Environmental Context") + "\n")
	b.WriteString(report.EnvironmentalContext + "\n\n")
	if report.XAIImageURL != "" {
		b.WriteString(subheading.Render("Model Attention (XAI)") + "\n")
		b.WriteString(muted.Render("The highlighted areas are what the AI focused on.") + "\n")
		b.WriteString(baseURL + report.XAIImageURL + "\n\n")
	}
	b.WriteString(subheading.Render("Management Suggestions") + "\n")
	b.WriteString(report.ManagementSuggestion + "\n")
	return b.String()
}
