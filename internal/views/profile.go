package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/domain"
)

// Profile renders the profile panel. Entering the view refreshes the
// current-user snapshot, and a plan change re-renders the whole shell
// because capability flags may have changed.
type Profile struct{}

// NewProfile creates the profile renderer.
func NewProfile() *Profile {
	return &Profile{}
}

func (p *Profile) Render(ctx context.Context, env *app.Env) (app.Panel, error) {
	user, err := env.Nav.RefreshUser(ctx)
	if err != nil {
		return app.Panel{}, err
	}

	var b strings.Builder
	b.WriteString(heading.Render("My Profile") + "\n")
	fmt.Fprintf(&b, "Email: %s\n", user.Email)
	fmt.Fprintf(&b, "User Type: %s\n", user.UserType)
	fmt.Fprintf(&b, "Current Plan: %s\n", user.SubscriptionTier.DisplayName())
	b.WriteString("\n" + subheading.Render("Change Plan") + "\n")

	var actions []app.Action
	for _, offer := range planOffers(user) {
		b.WriteString(fmt.Sprintf("  [%s] %s\n", offer.key, offer.label))
		tier := offer.tier
		actions = append(actions, app.Action{
			Key:    offer.key,
			Label:  offer.label,
			Prompt: fmt.Sprintf("Switch to the %s plan? (yes/no)", tier.DisplayName()),
			Do: func(ctx context.Context, input string) error {
				if !strings.EqualFold(strings.TrimSpace(input), "yes") {
					return nil
				}
				return env.Nav.ChangePlan(ctx, tier)
			},
		})
	}
	if len(actions) == 0 {
		b.WriteString(muted.Render("No plan changes available.") + "\n")
	}

	return app.Panel{Markup: card.Render(b.String()), Actions: actions}, nil
}

type planOffer struct {
	key   string
	label string
	tier  domain.SubscriptionTier
}

// planOffers mirrors the plan-button rules: public users may move between
// the RM10 and RM15 plans, business users may take the RM20 plan, and any
// paid tier may downgrade to free.
func planOffers(user *domain.User) []planOffer {
	var offers []planOffer
	tier := user.SubscriptionTier
	if tier == "" {
		tier = domain.TierFree
	}

	if user.UserType == domain.UserTypePublic {
		if tier != domain.Tier10 {
			offers = append(offers, planOffer{"1", "Subscribe to RM10 Plan", domain.Tier10})
		}
		if tier != domain.Tier15 {
			label := "Subscribe to RM15 Plan"
			if tier == domain.Tier10 {
				label = "Upgrade to RM15 Plan"
			}
			offers = append(offers, planOffer{"2", label, domain.Tier15})
		}
	}
	if user.IsBusiness() && tier != domain.TierBusiness {
		offers = append(offers, planOffer{"3", "Subscribe to RM20 Business Plan", domain.TierBusiness})
	}
	if tier != domain.TierFree {
		offers = append(offers, planOffer{"0", "Downgrade to Free Tier", domain.TierFree})
	}
	return offers
}
