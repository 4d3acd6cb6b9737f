package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const ordersIndex = "orders"

// orderDocument est la projection indexée d'une commande
type orderDocument struct {
	OrderID       string   `json:"order_id"`
	UserID        string   `json:"user_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	City          string   `json:"city"`
	ProductNames  []string `json:"product_names"`
	Status        string   `json:"status"`
	PaymentMethod string   `json:"payment_method"`
	Payment       bool     `json:"payment"`
	Amount        float64  `json:"amount"`
}

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// IndexOrder indexe (ou réindexe) une commande dans Elasticsearch
func IndexOrder(o models.Order) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer la commande", o.ID)
		return
	}

	doc := orderDocument{
		OrderID:       o.ID,
		UserID:        o.UserID,
		CustomerName:  o.Address.FirstName + " " + o.Address.LastName,
		CustomerEmail: o.Address.Email,
		City:          o.Address.City,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Payment:       o.Payment,
		Amount:        o.Amount,
	}
	for _, item := range o.Items {
		doc.ProductNames = append(doc.ProductNames, item.Name)
	}

	data, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      ordersIndex,
		DocumentID: o.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", o.ID, res.String())
	}
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// SearchOrders recherche des commandes par nom client, email, ville, produit ou statut
func SearchOrders(query string) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"customer_name", "customer_email", "city", "product_names", "status"},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{ordersIndex},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("erreur Elastic: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("erreur décodage réponse: %v", err)
	}

	results := make([]map[string]interface{}, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}
