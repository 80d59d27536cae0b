package paymentprovider

// CheckoutParams: параметры создания checkout-сессии подписки.
type CheckoutParams struct {
	PriceID    string
	CustomerID string // пустой для анонимного покупателя
	Email      string // используется, только если CustomerID пуст
	IdentityID string // client_reference_id и metadata
	SuccessURL string
	CancelURL  string
}

// SessionSummary: сведения о завершённой checkout-сессии для страницы приветствия.
type SessionSummary struct {
	Email          string `json:"email"`
	Status         string `json:"status"`
	SubscriptionID string `json:"subscription"`
}
