package domain

// Product is the read-only catalog projection exposed to agents.
type Product struct {
	ID          int64    `bson:"_id"         json:"id"`
	Name        string   `bson:"name"        json:"name"`
	Description string   `bson:"description" json:"description"`
	Price       string   `bson:"price"       json:"price"`
	Currency    string   `bson:"currency"    json:"currency"`
	Images      []string `bson:"images"      json:"images"`
}
