package patreonauth

// Tier is a coarse classification of a user's Patreon membership
type Tier string

const (
	// TierHigher is granted to users with an active patron membership
	TierHigher Tier = "higher"
	// TierLower is granted to everyone else
	TierLower Tier = "lower"
)

const patronStatusActive = "active_patron"

// deriveTier determines a user's tier from the resources included alongside their
// identity: the first member record that carries a patron status decides the tier,
// and a user with no such record gets the lower tier
func deriveTier(included []includedResource) Tier {
	for _, resource := range included {
		if resource.Type != "member" || resource.Attributes.PatronStatus == nil {
			continue
		}
		if *resource.Attributes.PatronStatus == patronStatusActive {
			return TierHigher
		}
		return TierLower
	}
	return TierLower
}
