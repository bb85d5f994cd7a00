package store

import "time"

// Plan tiers.
type Plan string

const (
	PlanFree     Plan = "FREE"
	PlanPro      Plan = "PRO"
	PlanBusiness Plan = "BUSINESS"
)

// Unlimited encodes an unbounded plan limit.
const Unlimited = -1

// PlanDetails are the numeric limits derived from a plan tier.
type PlanDetails struct {
	MaxAdmins     int `json:"maxAdmins"`
	MaxMembers    int `json:"maxMembers"`
	MaxWorkspaces int `json:"maxWorkspaces"`
}

var planTable = map[Plan]PlanDetails{
	PlanFree:     {MaxAdmins: 1, MaxMembers: 3, MaxWorkspaces: 1},
	PlanPro:      {MaxAdmins: 3, MaxMembers: 10, MaxWorkspaces: 5},
	PlanBusiness: {MaxAdmins: Unlimited, MaxMembers: Unlimited, MaxWorkspaces: Unlimited},
}

// DetailsForPlan returns the limits for a plan tier.
func DetailsForPlan(p Plan) (PlanDetails, bool) {
	d, ok := planTable[p]
	return d, ok
}

// PlanChange is one entry of the subscription history log.
type PlanChange struct {
	From      Plan      `json:"from"`
	To        Plan      `json:"to"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy,omitempty"`
}

type subscriptionDocument struct {
	CurrentPlan         Plan         `json:"currentPlan"`
	PlanDetails         PlanDetails  `json:"planDetails"`
	SubscriptionHistory []PlanChange `json:"subscriptionHistory"`
	IsTrialActive       bool         `json:"isTrialActive"`
	TrialEndsAt         *time.Time   `json:"trialEndsAt,omitempty"`
}

func defaultSubscriptionDocument() subscriptionDocument {
	return subscriptionDocument{
		CurrentPlan:         PlanFree,
		PlanDetails:         planTable[PlanFree],
		SubscriptionHistory: []PlanChange{},
	}
}

func normalizeSubscriptionDocument(doc *subscriptionDocument) {
	if _, ok := planTable[doc.CurrentPlan]; !ok {
		doc.CurrentPlan = PlanFree
	}
	// Derived limits always come from the table, never from stored data.
	doc.PlanDetails = planTable[doc.CurrentPlan]
	if doc.SubscriptionHistory == nil {
		doc.SubscriptionHistory = []PlanChange{}
	}
	if doc.TrialEndsAt == nil {
		doc.IsTrialActive = false
	}
}

// Subscription is the read view of the plan state.
type Subscription struct {
	CurrentPlan         Plan         `json:"currentPlan"`
	PlanDetails         PlanDetails  `json:"planDetails"`
	SubscriptionHistory []PlanChange `json:"subscriptionHistory"`
	IsTrialActive       bool         `json:"isTrialActive"`
	TrialEndsAt         *time.Time   `json:"trialEndsAt,omitempty"`
}

// Subscription returns the current plan state.
func (s *Store) Subscription() Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]PlanChange, len(s.subscription.SubscriptionHistory))
	copy(history, s.subscription.SubscriptionHistory)
	return Subscription{
		CurrentPlan:         s.subscription.CurrentPlan,
		PlanDetails:         s.subscription.PlanDetails,
		SubscriptionHistory: history,
		IsTrialActive:       s.subscription.IsTrialActive,
		TrialEndsAt:         s.subscription.TrialEndsAt,
	}
}

// ChangePlan switches the plan tier, logs the change, and retries a held role
// change if the new limits allow it. There is no payment gateway; the change
// takes effect immediately.
func (s *Store) ChangePlan(plan Plan, changedBy string) (Subscription, bool) {
	s.mu.Lock()

	details, ok := planTable[plan]
	if !ok {
		s.mu.Unlock()
		return Subscription{}, false
	}
	if plan != s.subscription.CurrentPlan {
		s.subscription.SubscriptionHistory = append(s.subscription.SubscriptionHistory, PlanChange{
			From:      s.subscription.CurrentPlan,
			To:        plan,
			ChangedAt: time.Now(),
			ChangedBy: changedBy,
		})
		s.subscription.CurrentPlan = plan
		s.subscription.PlanDetails = details
		s.subscription.IsTrialActive = false
		s.subscription.TrialEndsAt = nil
		s.persistSubscription()
		s.applyPendingRoleChangeLocked()
	}
	s.mu.Unlock()
	return s.Subscription(), true
}

// StartTrial opens a trial window on the given plan.
func (s *Store) StartTrial(plan Plan, days int, changedBy string) (Subscription, bool) {
	s.mu.Lock()

	details, ok := planTable[plan]
	if !ok || days <= 0 {
		s.mu.Unlock()
		return Subscription{}, false
	}
	ends := time.Now().AddDate(0, 0, days)
	s.subscription.SubscriptionHistory = append(s.subscription.SubscriptionHistory, PlanChange{
		From:      s.subscription.CurrentPlan,
		To:        plan,
		ChangedAt: time.Now(),
		ChangedBy: changedBy,
	})
	s.subscription.CurrentPlan = plan
	s.subscription.PlanDetails = details
	s.subscription.IsTrialActive = true
	s.subscription.TrialEndsAt = &ends
	s.persistSubscription()
	s.applyPendingRoleChangeLocked()
	s.mu.Unlock()
	return s.Subscription(), true
}
