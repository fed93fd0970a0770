package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	ContentHandler      *ContentHandler
	SubscriptionHandler *SubscriptionHandler
	HealthHandler       *HealthHandler
}
