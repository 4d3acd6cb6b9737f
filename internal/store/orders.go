package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound  = errors.New("commande introuvable")
	ErrOrderCancelled = errors.New("commande annulée, paiement refusé")
)

// OrderStore est le contrat de persistance des commandes.
// MarkPaid est un compare-and-set : il ne s'applique qu'une seule fois
// même si webhook, verify et capture arrivent en concurrence.
type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, o *models.Order) (bool, error)
	UpdateStatus(ctx context.Context, o *models.Order, status models.OrderStatus, reason string) error
	SetStripeSession(ctx context.Context, orderID, sessionID string) error
	SetPayPalOrderID(ctx context.Context, orderID, paypalOrderID string) error
	SetPayPalCapture(ctx context.Context, orderID, payerID, captureID string) error
}

// ScyllaOrderStore persiste les commandes dans ScyllaDB, avec le schéma
// double table orders / orders_by_user (tri par date côté cluster).
type ScyllaOrderStore struct{}

func NewScyllaOrderStore() *ScyllaOrderStore {
	return &ScyllaOrderStore{}
}

const orderColumns = `order_id, user_id, items, address, amount, payment_method, payment, status,
	stripe_session_id, paypal_order_id, paypal_payer_id, paypal_capture_id,
	cancellation_reason, return_reason, created_at`

func (s *ScyllaOrderStore) Insert(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderUUID, err := gocql.ParseUUID(o.ID)
	if err != nil {
		return fmt.Errorf("id commande invalide: %v", err)
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return err
	}

	err = session.Query(`INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		orderUUID, o.UserID, string(itemsJSON), string(addressJSON), o.Amount,
		string(o.PaymentMethod), o.Payment, string(o.Status),
		o.ProviderRefs.StripeSessionID, o.ProviderRefs.PayPalOrderID,
		o.ProviderRefs.PayPalPayerID, o.ProviderRefs.PayPalCaptureID,
		o.CancellationReason, o.ReturnReason, o.CreatedAt).WithContext(ctx).Exec()
	if err != nil {
		return err
	}

	// Table de lecture par utilisateur, triée par date décroissante
	err = session.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, items, address, amount, payment_method, payment, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.CreatedAt, orderUUID, string(itemsJSON), string(addressJSON),
		o.Amount, string(o.PaymentMethod), o.Payment, string(o.Status)).WithContext(ctx).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur insertion orders_by_user pour %s: %v", o.ID, err)
	}

	return nil
}

func scanOrder(scan func(dest ...interface{}) error) (*models.Order, error) {
	var (
		orderUUID                        gocql.UUID
		itemsJSON, addressJSON           string
		method, status                   string
		stripeSession, ppOrder           string
		ppPayer, ppCapture               string
		cancellationReason, returnReason string
		o                                models.Order
	)

	err := scan(&orderUUID, &o.UserID, &itemsJSON, &addressJSON, &o.Amount, &method, &o.Payment, &status,
		&stripeSession, &ppOrder, &ppPayer, &ppCapture, &cancellationReason, &returnReason, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	o.ID = orderUUID.String()
	o.PaymentMethod = models.PaymentMethod(method)
	o.Status = models.OrderStatus(status)
	o.ProviderRefs = models.ProviderRefs{
		StripeSessionID: stripeSession,
		PayPalOrderID:   ppOrder,
		PayPalPayerID:   ppPayer,
		PayPalCaptureID: ppCapture,
	}
	o.CancellationReason = cancellationReason
	o.ReturnReason = returnReason

	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("articles illisibles pour %s: %v", o.ID, err)
	}
	if err := json.Unmarshal([]byte(addressJSON), &o.Address); err != nil {
		return nil, fmt.Errorf("adresse illisible pour %s: %v", o.ID, err)
	}

	return &o, nil
}

func (s *ScyllaOrderStore) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	q := session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderUUID).WithContext(ctx)
	o, err := scanOrder(q.Scan)
	if err == gocql.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *ScyllaOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, created_at, items, address, amount, payment_method, payment, status
		FROM orders_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	orders := []models.Order{}
	var (
		orderUUID              gocql.UUID
		createdAt              time.Time
		itemsJSON, addressJSON string
		amount                 float64
		method, status         string
		payment                bool
	)
	for iter.Scan(&orderUUID, &createdAt, &itemsJSON, &addressJSON, &amount, &method, &payment, &status) {
		o := models.Order{
			ID:            orderUUID.String(),
			UserID:        userID,
			Amount:        amount,
			PaymentMethod: models.PaymentMethod(method),
			Payment:       payment,
			Status:        models.OrderStatus(status),
			CreatedAt:     createdAt,
		}
		unmarshalOrderSnapshots(&o, itemsJSON, addressJSON)
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *ScyllaOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()

	orders := []models.Order{}
	var (
		orderUUID                        gocql.UUID
		userID                           string
		itemsJSON, addressJSON           string
		amount                           float64
		method, status                   string
		payment                          bool
		stripeSession, ppOrder           string
		ppPayer, ppCapture               string
		cancellationReason, returnReason string
		createdAt                        time.Time
	)
	for iter.Scan(&orderUUID, &userID, &itemsJSON, &addressJSON, &amount, &method, &payment, &status,
		&stripeSession, &ppOrder, &ppPayer, &ppCapture, &cancellationReason, &returnReason, &createdAt) {
		o := models.Order{
			ID:            orderUUID.String(),
			UserID:        userID,
			Amount:        amount,
			PaymentMethod: models.PaymentMethod(method),
			Payment:       payment,
			Status:        models.OrderStatus(status),
			ProviderRefs: models.ProviderRefs{
				StripeSessionID: stripeSession,
				PayPalOrderID:   ppOrder,
				PayPalPayerID:   ppPayer,
				PayPalCaptureID: ppCapture,
			},
			CancellationReason: cancellationReason,
			ReturnReason:       returnReason,
			CreatedAt:          createdAt,
		}
		unmarshalOrderSnapshots(&o, itemsJSON, addressJSON)
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}

// unmarshalOrderSnapshots décode les colonnes JSON items/address d'une
// ligne de listing. Une ligne au JSON illisible est gardée : on logge
// et on renvoie la commande sans son détail plutôt que de tronquer la
// liste.
func unmarshalOrderSnapshots(o *models.Order, itemsJSON, addressJSON string) {
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		log.Printf("⚠️ Articles illisibles pour %s: %v", o.ID, err)
	}
	if err := json.Unmarshal([]byte(addressJSON), &o.Address); err != nil {
		log.Printf("⚠️ Adresse illisible pour %s: %v", o.ID, err)
	}
}

// MarkPaid passe payment à true via une transaction légère (LWT).
// Retourne false si la commande était déjà payée : les effets de bord
// (vidage panier, e-mail, facture) ne doivent alors pas être rejoués.
// La condition porte aussi sur le statut : une commande annulée entre
// la lecture et la confirmation remonte ErrOrderCancelled.
func (s *ScyllaOrderStore) MarkPaid(ctx context.Context, o *models.Order) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	orderUUID, err := gocql.ParseUUID(o.ID)
	if err != nil {
		return false, ErrOrderNotFound
	}

	prev := map[string]interface{}{}
	applied, err := session.Query(`UPDATE orders SET payment = true WHERE order_id = ? IF payment = false AND status != ?`,
		orderUUID, string(models.StatusCancelled)).WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return false, err
	}
	if !applied {
		if paid, ok := prev["payment"].(bool); ok && paid {
			return false, nil
		}
		return false, ErrOrderCancelled
	}

	// Mise à jour best-effort de la table de lecture
	err = session.Query(`UPDATE orders_by_user SET payment = true WHERE user_id = ? AND created_at = ? AND order_id = ?`,
		o.UserID, o.CreatedAt, orderUUID).WithContext(ctx).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur mise à jour orders_by_user (payment) pour %s: %v", o.ID, err)
	}

	return true, nil
}

// UpdateStatus applique un changement de statut par mise à jour partielle
// (pas de relecture/réécriture du document complet).
func (s *ScyllaOrderStore) UpdateStatus(ctx context.Context, o *models.Order, status models.OrderStatus, reason string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderUUID, err := gocql.ParseUUID(o.ID)
	if err != nil {
		return ErrOrderNotFound
	}

	query := "UPDATE orders SET status = ? WHERE order_id = ?"
	args := []interface{}{string(status), orderUUID}
	switch status {
	case models.StatusCancelled:
		query = "UPDATE orders SET status = ?, cancellation_reason = ? WHERE order_id = ?"
		args = []interface{}{string(status), reason, orderUUID}
	case models.StatusReturned:
		query = "UPDATE orders SET status = ?, return_reason = ? WHERE order_id = ?"
		args = []interface{}{string(status), reason, orderUUID}
	}

	if err := session.Query(query, args...).WithContext(ctx).Exec(); err != nil {
		return err
	}

	err = session.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND order_id = ?`,
		string(status), o.UserID, o.CreatedAt, orderUUID).WithContext(ctx).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur mise à jour orders_by_user (status) pour %s: %v", o.ID, err)
	}

	return nil
}

func (s *ScyllaOrderStore) setColumn(ctx context.Context, orderID, column, value string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	return session.Query("UPDATE orders SET "+column+" = ? WHERE order_id = ?",
		value, orderUUID).WithContext(ctx).Exec()
}

func (s *ScyllaOrderStore) SetStripeSession(ctx context.Context, orderID, sessionID string) error {
	return s.setColumn(ctx, orderID, "stripe_session_id", sessionID)
}

func (s *ScyllaOrderStore) SetPayPalOrderID(ctx context.Context, orderID, paypalOrderID string) error {
	return s.setColumn(ctx, orderID, "paypal_order_id", paypalOrderID)
}

func (s *ScyllaOrderStore) SetPayPalCapture(ctx context.Context, orderID, payerID, captureID string) error {
	if err := s.setColumn(ctx, orderID, "paypal_payer_id", payerID); err != nil {
		return err
	}
	return s.setColumn(ctx, orderID, "paypal_capture_id", captureID)
}

// NewOrderID génère un identifiant de commande opaque
func NewOrderID() string {
	return uuid.NewString()
}
