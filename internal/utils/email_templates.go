package utils

import (
	"fmt"
	"strings"

	"velora_back_end/internal/config"
	"velora_back_end/internal/models"
)

// FormatAmount formate un montant dans la devise d'affichage de la boutique
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(config.Currency()))
}

func itemsTableHTML(items []models.OrderItem) string {
	rows := ""
	for _, item := range items {
		name := item.Name
		if item.Size != "" {
			name = fmt.Sprintf("%s (%s)", item.Name, item.Size)
		}
		rows += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
			</tr>`, name, item.Quantity, FormatAmount(item.Price), FormatAmount(item.Price*float64(item.Quantity)))
	}
	return rows
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande.
// qrBase64 est optionnel : renseigné pour les commandes COD non réglées.
func GenerateOrderConfirmationHTML(order models.Order, qrBase64 string) string {
	qrBlock := ""
	if qrBase64 != "" {
		qrBlock = fmt.Sprintf(`
		<div style="margin-top: 20px; text-align: center;">
			<p style="color: #555;">Votre commande sera réglée à la livraison. Vous pouvez aussi payer par virement :</p>
			<img src="%s" alt="QR de paiement" style="width: 180px; height: 180px;"/>
		</div>`, qrBase64)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande <strong>%s</strong> a bien été enregistrée.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total (livraison incluse):</td>
					<td style="padding: 10px; font-weight: bold;">%s</td>
				</tr>
			</tfoot>
		</table>
		%s

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velora</strong>
		</p>
	</div>
</body>
</html>`, order.Address.FirstName, order.ID, itemsTableHTML(order.Items), FormatAmount(order.Amount), qrBlock)
}

// statusLabels traduit les statuts pour les e-mails client
var statusLabels = map[models.OrderStatus]string{
	models.StatusOrderPlaced:    "Commande enregistrée",
	models.StatusPacking:        "En préparation",
	models.StatusShipped:        "Expédiée",
	models.StatusOutForDelivery: "En cours de livraison",
	models.StatusDelivered:      "Livrée",
	models.StatusCancelled:      "Annulée",
	models.StatusReturned:       "Retournée",
}

// GenerateStatusUpdateHTML génère le HTML de notification de changement de statut
func GenerateStatusUpdateHTML(order models.Order, newStatus models.OrderStatus) string {
	label := statusLabels[newStatus]
	if label == "" {
		label = string(newStatus)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Mise à jour de votre commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>Le statut de votre commande <strong>%s</strong> vient de changer :</p>
		<p style="font-size: 20px; font-weight: bold; color: #667eea; text-align: center; margin: 30px 0;">%s</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velora</strong>
		</p>
	</div>
</body>
</html>`, order.Address.FirstName, order.ID, label)
}

// GenerateInvoiceHTML génère la facture HTML archivée dans MinIO
func GenerateInvoiceHTML(order models.Order) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Facture %s</title>
</head>
<body style="font-family: Arial, sans-serif; padding: 40px;">
	<h1>Facture</h1>
	<p>Commande : <strong>%s</strong><br>
	Date : %s<br>
	Mode de paiement : %s</p>
	<p>%s %s<br>%s<br>%s %s, %s<br>%s</p>
	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background-color: #f0f0f0;">
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
				<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
			</tr>
		</thead>
		<tbody>%s</tbody>
		<tfoot>
			<tr>
				<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total (livraison incluse):</td>
				<td style="padding: 10px; font-weight: bold;">%s</td>
			</tr>
		</tfoot>
	</table>
</body>
</html>`, order.ID, order.ID, order.CreatedAt.Format("02/01/2006"), order.PaymentMethod,
		order.Address.FirstName, order.Address.LastName, order.Address.Street,
		order.Address.PostalCode, order.Address.City, order.Address.Province, order.Address.Country,
		itemsTableHTML(order.Items), FormatAmount(order.Amount))
}
