package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"velora_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

// MinIOInvoiceStore archive les factures HTML dans MinIO et signe les
// liens de téléchargement
type MinIOInvoiceStore struct{}

func NewMinIOInvoiceStore() *MinIOInvoiceStore {
	return &MinIOInvoiceStore{}
}

// Store archive la facture HTML d'une commande payée
func (s *MinIOInvoiceStore) Store(ctx context.Context, orderID, html string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}

	objectName := invoiceObjectName(orderID)
	reader := bytes.NewReader([]byte(html))

	_, err := database.MinIO.PutObject(ctx, database.InvoiceBucket(), objectName, reader, int64(reader.Len()),
		minio.PutObjectOptions{ContentType: "text/html; charset=utf-8"})
	if err != nil {
		return err
	}

	log.Printf("🧾 Facture archivée : %s", objectName)
	return nil
}

// URL génère une URL signée de téléchargement, après vérification que la
// facture existe bien dans le bucket
func (s *MinIOInvoiceStore) URL(ctx context.Context, orderID string, duration time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	objectName := invoiceObjectName(orderID)
	if _, err := database.MinIO.StatObject(ctx, database.InvoiceBucket(), objectName, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("facture introuvable pour %s: %v", orderID, err)
	}

	presignedURL, err := database.MinIO.PresignedGetObject(
		ctx,
		database.InvoiceBucket(),
		objectName,
		duration,
		nil,
	)
	if err != nil {
		return "", err
	}

	return presignedURL.String(), nil
}

func invoiceObjectName(orderID string) string {
	return fmt.Sprintf("invoices/%s.html", orderID)
}
