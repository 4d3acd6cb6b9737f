package models

import "time"

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentStripe PaymentMethod = "Stripe"
	PaymentPayPal PaymentMethod = "PayPal"
)

type OrderStatus string

const (
	StatusOrderPlaced    OrderStatus = "Order Placed"
	StatusPacking        OrderStatus = "Packing"
	StatusShipped        OrderStatus = "Shipped"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
	StatusReturned       OrderStatus = "Returned"
)

// ValidMethod vérifie qu'une méthode de paiement est connue
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentStripe, PaymentPayPal:
		return true
	}
	return false
}

// allowedFrom liste les statuts prédécesseurs autorisés pour chaque statut cible.
// Cancelled et Returned sont terminaux.
var allowedFrom = map[OrderStatus][]OrderStatus{
	StatusPacking:        {StatusOrderPlaced},
	StatusShipped:        {StatusPacking},
	StatusOutForDelivery: {StatusShipped},
	StatusDelivered:      {StatusOutForDelivery, StatusShipped},
	StatusCancelled:      {StatusOrderPlaced, StatusPacking, StatusShipped, StatusOutForDelivery},
	StatusReturned:       {StatusDelivered},
}

// ValidStatus vérifie qu'un statut fait partie de l'énumération
func ValidStatus(s OrderStatus) bool {
	if s == StatusOrderPlaced {
		return true
	}
	_, ok := allowedFrom[s]
	return ok
}

// CanTransition vérifie qu'un changement de statut respecte la table de transitions
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}

// OrderItem est une copie figée d'un article au moment de la commande.
// Les modifications ultérieures du produit ne changent pas l'historique.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
}

// Address est le snapshot de livraison, immuable après création
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// ProviderRefs regroupe les identifiants de corrélation côté prestataire de paiement
type ProviderRefs struct {
	StripeSessionID string `json:"stripeSessionId,omitempty"`
	PayPalOrderID   string `json:"paypalOrderId,omitempty"`
	PayPalPayerID   string `json:"paypalPayerId,omitempty"`
	PayPalCaptureID string `json:"paypalCaptureId,omitempty"`
}

type Order struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"userId"`
	Items              []OrderItem   `json:"items"`
	Address            Address       `json:"address"`
	Amount             float64       `json:"amount"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	Payment            bool          `json:"payment"`
	Status             OrderStatus   `json:"status"`
	ProviderRefs       ProviderRefs  `json:"providerRefs"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	ReturnReason       string        `json:"returnReason,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// ItemsTotal calcule la somme serveur des articles (prix × quantité)
func (o Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
