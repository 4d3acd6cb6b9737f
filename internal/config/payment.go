package config

import (
	"os"
	"strconv"
	"strings"
)

// Frais de livraison forfaitaires, dans la devise d'affichage de la boutique
const DefaultDeliveryFee = 50.0

// DeliveryFee retourne le montant des frais de livraison (DELIVERY_FEE)
func DeliveryFee() float64 {
	if v := os.Getenv("DELIVERY_FEE"); v != "" {
		if fee, err := strconv.ParseFloat(v, 64); err == nil && fee >= 0 {
			return fee
		}
	}
	return DefaultDeliveryFee
}

// Currency retourne la devise d'affichage de la boutique (CURRENCY, défaut ZAR)
func Currency() string {
	if v := os.Getenv("CURRENCY"); v != "" {
		return strings.ToLower(v)
	}
	return "zar"
}

// PayPalCurrency retourne la devise de règlement PayPal (PAYPAL_CURRENCY, défaut USD).
// PayPal facture dans cette devise sans conversion depuis la devise d'affichage.
func PayPalCurrency() string {
	if v := os.Getenv("PAYPAL_CURRENCY"); v != "" {
		return strings.ToUpper(v)
	}
	return "USD"
}

// FrontendURL retourne l'URL du frontend pour les redirections de paiement
func FrontendURL() string {
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:5173"
}
