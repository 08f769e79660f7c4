package scoring

import "github.com/dennisdiepolder/champkpi/internal/types"

var tierMessages = map[types.Tier]string{
	types.TierOutstanding:      "Outstanding performance! Keep setting the bar.",
	types.TierGood:             "Good work! You're close to the top tier.",
	types.TierFair:             "Fair month. A few focused improvements will lift your score.",
	types.TierNeedsImprovement: "Needs improvement. Let's work on your targets together.",
	types.TierUnknown:          "Grand Total not available.",
}

// TierMessage returns the motivational line shown with a tier
func TierMessage(t types.Tier) string {
	if msg, ok := tierMessages[t]; ok {
		return msg
	}
	return tierMessages[types.TierUnknown]
}

func deltaMessage(kind types.DeltaKind, large bool) string {
	switch kind {
	case types.DeltaImproved:
		if large {
			return "Great leap forward from last month!"
		}
		return "You improved on last month. Keep the momentum."
	case types.DeltaDropped:
		if large {
			return "Your score dropped noticeably. Review your KPIs with your team lead."
		}
		return "A slight dip from last month. You can bounce back."
	case types.DeltaNoChange:
		return "Steady: no change from last month."
	}
	return "No previous month to compare against."
}
