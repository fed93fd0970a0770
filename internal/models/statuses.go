package models

type SubscriptionStatus string
type ContentType string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"

	ContentTypeBlog   ContentType = "blog"
	ContentTypeSocial ContentType = "social"
	ContentTypeEmail  ContentType = "email"
	ContentTypeSEO    ContentType = "seo"
)

// AllSubscriptionStatuses - порядок важен для метрик
var AllSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
	SubscriptionStatusCancelled,
	SubscriptionStatusInactive,
}

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusCancelled, SubscriptionStatusInactive:
		return true
	}
	return false
}

func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeBlog, ContentTypeSocial, ContentTypeEmail, ContentTypeSEO:
		return true
	}
	return false
}
