package authflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/session"
	"github.com/charmbracelet/huh"
)

// Login runs the login form, exchanges credentials for a token, and
// persists it.
func Login(ctx context.Context, gw *gateway.Client, store session.Store) error {
	var email, password string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(ValidateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("login form: %w", err)
	}

	token, err := gw.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := store.SetToken(ctx, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	slog.Info("Logged in", "email", email)
	return nil
}

// SignUp runs the account-type choice and registration forms, then the
// email verification step. All client-side validation happens before the
// first network call.
func SignUp(ctx context.Context, gw *gateway.Client) error {
	var userType string
	choice := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Account type").
			Options(
				huh.NewOption("Public", string(domain.UserTypePublic)),
				huh.NewOption("Business", string(domain.UserTypeBusiness)),
			).
			Value(&userType),
	))
	if err := choice.Run(); err != nil {
		return fmt.Errorf("account choice form: %w", err)
	}

	req, err := runSignUpForm(userType)
	if err != nil {
		return err
	}

	userID, err := gw.SignUp(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("A 6-digit code has been sent to %s.\n", req.Email)

	if err := verify(ctx, gw, userID); err != nil {
		return err
	}
	fmt.Println("Email verified successfully! Please log in.")
	return nil
}

func runSignUpForm(userType string) (gateway.SignUpRequest, error) {
	business := userType == string(domain.UserTypeBusiness)

	icTitle := "IC-No."
	if business {
		icTitle = "IC / Business Registration No."
	}

	var req gateway.SignUpRequest
	var password, confirm string
	req.UserType = userType

	fields := []huh.Field{
		huh.NewInput().Title("Email").Value(&req.Email).Validate(ValidateEmail),
		huh.NewInput().Title("Name").Value(&req.Name),
		huh.NewInput().Title(icTitle).Value(&req.ICNo).Validate(ValidateICNo),
		huh.NewInput().Title("Phone number").Value(&req.PhoneNumber),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
		huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm),
	}
	if business {
		fields = append(fields, huh.NewSelect[string]().
			Title("Company type").
			Options(
				huh.NewOption("Sole proprietorship", "sole_proprietorship"),
				huh.NewOption("Partnership", "partnership"),
				huh.NewOption("Private limited (Sdn Bhd)", "sdn_bhd"),
			).
			Value(&req.CompanyType))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return gateway.SignUpRequest{}, fmt.Errorf("signup form: %w", err)
	}

	// Cross-field check, before any network call.
	if err := ValidatePasswords(password, confirm); err != nil {
		return gateway.SignUpRequest{}, err
	}
	req.Password = password
	return req, nil
}

func verify(ctx context.Context, gw *gateway.Client, userID int64) error {
	var code string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Enter 6-digit code").
			CharLimit(6).
			Value(&code).
			Validate(ValidateCode),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("verification form: %w", err)
	}
	return gw.VerifyEmail(ctx, userID, code)
}
