// Package domain contains core domain types for the Agri-Advisor client.
package domain

// UserType distinguishes public accounts from business accounts.
type UserType string

const (
	UserTypePublic   UserType = "public"
	UserTypeBusiness UserType = "business"
)

// SubscriptionTier identifies the plan a user is subscribed to.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	Tier10       SubscriptionTier = "tier_10"
	Tier15       SubscriptionTier = "tier_15"
	TierBusiness SubscriptionTier = "tier_20"
)

// DisplayName returns the human-readable plan name shown on the profile view.
func (t SubscriptionTier) DisplayName() string {
	switch t {
	case Tier10:
		return "Pro (RM10)"
	case Tier15:
		return "Pro Plus (RM15)"
	case TierBusiness:
		return "Business Pro (RM20)"
	default:
		return "Free Tier"
	}
}

// Permissions holds the capability flags gating dashboard features.
type Permissions struct {
	CanPost      bool `json:"can_post"`
	CanChat      bool `json:"can_chat"`
	CanShop      bool `json:"can_shop"`
	CanComment   bool `json:"can_comment"`
	CanLikeShare bool `json:"can_like_share"`
}

// User is the authenticated identity snapshot returned by the backend.
// It is owned by the router and refreshed on demand; staleness between
// refreshes is accepted.
type User struct {
	ID               int64            `json:"id"`
	Email            string           `json:"email"`
	UserType         UserType         `json:"user_type"`
	Permissions      Permissions      `json:"permissions"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
}

// IsBusiness returns true for business accounts.
func (u *User) IsBusiness() bool {
	return u.UserType == UserTypeBusiness
}
