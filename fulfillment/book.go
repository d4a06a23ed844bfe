package fulfillment

import (
	"time"

	"github.com/google/uuid"
)

// Book is a unique, non-restockable catalog item.
// Once Purchased flips to true it never reverts; the catalog never deletes
// books. Books are created by seeding and mutated only by a successful
// fulfillment commit.
type Book struct {
	ID          uuid.UUID
	Title       string
	Author      string
	Description string
	Price       Money
	Purchased   bool
	CreatedAt   time.Time
}

// BuildBook creates a Book with a fresh identity and the purchased flag
// unset, for catalog seeding.
func BuildBook(title string, author string, description string, price Money, createdAt time.Time) Book {
	return Book{
		ID:          uuid.New(),
		Title:       title,
		Author:      author,
		Description: description,
		Price:       price,
		Purchased:   false,
		CreatedAt:   createdAt,
	}
}
