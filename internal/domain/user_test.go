package domain

import "testing"

func TestSubscriptionTierDisplayName(t *testing.T) {
	tests := []struct {
		tier SubscriptionTier
		want string
	}{
		{TierFree, "Free Tier"},
		{Tier10, "Pro (RM10)"},
		{Tier15, "Pro Plus (RM15)"},
		{TierBusiness, "Business Pro (RM20)"},
		{SubscriptionTier("unknown"), "Free Tier"},
	}

	for _, tt := range tests {
		if got := tt.tier.DisplayName(); got != tt.want {
			t.Errorf("Expected %q for %q, got %q", tt.want, tt.tier, got)
		}
	}
}

func TestIsBusiness(t *testing.T) {
	business := &User{UserType: UserTypeBusiness}
	if !business.IsBusiness() {
		t.Error("Expected business account to report IsBusiness")
	}

	public := &User{UserType: UserTypePublic}
	if public.IsBusiness() {
		t.Error("Expected public account to not report IsBusiness")
	}
}
