package models

// Cart associe un identifiant produit à ses quantités par taille.
// Stocké en JSON dans Redis sous la clé cart:<userID>.
type Cart map[string]map[string]int

// Add incrémente la quantité d'un produit pour une taille donnée
func (c Cart) Add(productID, size string, quantity int) {
	if c[productID] == nil {
		c[productID] = make(map[string]int)
	}
	c[productID][size] += quantity
}

// Set fixe la quantité (0 supprime la taille, puis le produit si vide)
func (c Cart) Set(productID, size string, quantity int) {
	if quantity <= 0 {
		if sizes, ok := c[productID]; ok {
			delete(sizes, size)
			if len(sizes) == 0 {
				delete(c, productID)
			}
		}
		return
	}
	if c[productID] == nil {
		c[productID] = make(map[string]int)
	}
	c[productID][size] = quantity
}

// Count retourne le nombre total d'articles du panier
func (c Cart) Count() int {
	total := 0
	for _, sizes := range c {
		for _, qty := range sizes {
			total += qty
		}
	}
	return total
}

// IsEmpty indique si le panier ne contient aucun article
func (c Cart) IsEmpty() bool {
	return c.Count() == 0
}
