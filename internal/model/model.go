// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; the few methods here are pure derivations.
package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Roles.
const (
	RoleClient    = "client"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is a customer or staff profile. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	DateJoined   time.Time `json:"date_joined"`
	CartSize     int       `json:"cart_size"`
	Avatar       string    `json:"avatar"`
	Timestamp    time.Time `json:"timestamp"`
}

// GravatarURL derives the identicon avatar for an e-mail address.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(sum[:]), size)
}

// UserSummary is the nested customer shape on carts and orders.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Artist owns products.
type Artist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Timestamp   time.Time `json:"timestamp"`
}

// Product is an item for sale. Deadline is a campaign length in days counted from Timestamp.
type Product struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Deadline       int       `json:"deadline"`
	DaysLeft       int       `json:"days_left"`
	Goal           int       `json:"goal"`
	Price          int       `json:"price"`
	ArtistID       int64     `json:"artist_id"`
	ArtistName     string    `json:"artist_name"`
	ArtistDetails  string    `json:"artist_details"`
	ArtistWebsite  string    `json:"artist_website"`
	MainImage      string    `json:"mainImage"`
	SubImages      []string  `json:"subImages"`
	Composition    string    `json:"composition"`
	Color          string    `json:"color"`
	Style          string    `json:"style"`
	Quantity       int       `json:"quantity"`
	QuantityInCart int       `json:"quantity_in_cart"`
	Sizes          []string  `json:"sizes"`
	Timestamp      time.Time `json:"timestamp"`
}

// RemainingDays is the number of whole days until the campaign deadline, never negative.
func (p Product) RemainingDays(now time.Time) int {
	end := p.Timestamp.AddDate(0, 0, p.Deadline)
	left := int(end.Sub(now).Hours() / 24)
	if left < 0 {
		return 0
	}
	return left
}

// ProductSummary is the nested product shape on carts and orders.
type ProductSummary struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Price     int      `json:"price"`
	Quantity  int      `json:"quantity"`
	SubImages []string `json:"subImages"`
}

// CartItem is one product line in a customer's cart.
type CartItem struct {
	ID         int64          `json:"id"`
	Quantity   int            `json:"quantity"`
	Size       string         `json:"size"`
	CustomerID int64          `json:"customer_id"`
	ProductID  int64          `json:"product_id"`
	TotalPrice int            `json:"total_price"`
	Product    ProductSummary `json:"product"`
	Customer   UserSummary    `json:"customer"`
	Timestamp  time.Time      `json:"timestamp"`
}

// TaxRate applied on top of a cart total.
var TaxRate = decimal.NewFromFloat(0.1)

// CartTotals is the extra data returned with a customer's cart listing.
type CartTotals struct {
	TotalPrice decimal.Decimal `json:"total_price"`
	PlusTax    decimal.Decimal `json:"plus_tax"`
}

// NewCartTotals computes the taxed total from a pre-tax sum.
func NewCartTotals(total decimal.Decimal) CartTotals {
	return CartTotals{TotalPrice: total, PlusTax: total.Add(total.Mul(TaxRate))}
}

// Order records a completed checkout.
type Order struct {
	ID         int64            `json:"id"`
	Price      decimal.Decimal  `json:"price"`
	Status     string           `json:"status"`
	PaymentID  string           `json:"payment_id"`
	CustomerID int64            `json:"customer_id"`
	Customer   UserSummary      `json:"customer"`
	Products   []ProductSummary `json:"products"`
	Timestamp  time.Time        `json:"timestamp"`
}
