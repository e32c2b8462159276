package service

import (
	"strings"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"

	"github.com/shopspring/decimal"
)

// Catalog tabs
const (
	TabAll        = "all"
	TabUnlocked   = "unlocked"
	TabLocked     = "locked"
	TabComingSoon = "coming_soon"
)

// CatalogEntry is an item together with its status for a given balance
type CatalogEntry struct {
	domain.CatalogItem
	Status domain.ItemStatus `json:"status"`
}

// Catalog is the static list of redeemable rewards
type Catalog struct {
	items []domain.CatalogItem
}

func NewCatalog(items []domain.CatalogItem) *Catalog {
	return &Catalog{items: items}
}

// DefaultCatalog returns the rewards offered on the redeem page
func DefaultCatalog() *Catalog {
	five := decimal.NewFromInt(5)
	return NewCatalog([]domain.CatalogItem{
		{Name: "$5 Bank Transfer", Icon: "💸", Points: 5000, FaceValue: five, Currency: "USD",
			Description: "The $5 equivalent will be transferred to your bank account."},
		{Name: "$5 PayPal International", Icon: "💸", Points: 5000, FaceValue: five, Currency: "USD",
			Description: "Receive a $5 PayPal balance transfer directly to your PayPal account email."},
		{Name: "$5 Virtual Visa Card", Icon: "🎁", Points: 5000, FaceValue: five, Currency: "USD",
			Description: "Use your $5 prepaid card to shop anywhere Visa is accepted online."},
		{Name: "$5 Apple Gift Card", Icon: "🎁", Points: 5000, FaceValue: five, Currency: "USD",
			Description: "Redeem this $5 Apple Gift Card for apps, games, music, movies, and more on the App Store and iTunes."},
		{Name: "$5 Google Play Card", Icon: "🎁", Points: 5000, FaceValue: five, Currency: "USD",
			Description: "Use this $5 Google Play Gift Card to purchase apps, games, movies, books, and more on the Google Play Store."},
		{Name: "$5 Amazon Gift Card", Icon: "🎁", Points: 5000, FaceValue: five, Currency: "USD",
			Description: "Get a $5 digital gift card to spend on your favorite tools or platforms."},
		{Name: "$10 Amazon Gift Card", Icon: "🎁", Points: 10000, FaceValue: decimal.NewFromInt(10), Currency: "USD",
			Description: "Get a $10 digital gift card to spend on your favorite tools or platforms."},
		{Name: "Free Udemy Course", Icon: "📚", Points: 0, FaceValue: decimal.Zero,
			Description: "Coming Soon!"},
	})
}

// Find looks an item up by name, case-insensitively
func (c *Catalog) Find(name string) (domain.CatalogItem, bool) {
	name = strings.TrimSpace(name)
	for _, it := range c.items {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return domain.CatalogItem{}, false
}

// List returns the items visible on tab for the given balance
func (c *Catalog) List(tab string, balance int64) ([]CatalogEntry, error) {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" {
		tab = TabAll
	}

	var want domain.ItemStatus
	switch tab {
	case TabAll:
	case TabUnlocked:
		want = domain.ItemUnlocked
	case TabLocked:
		want = domain.ItemLocked
	case TabComingSoon:
		want = domain.ItemComingSoon
	default:
		return nil, &domain.ValidationError{Field: "tab", Message: "must be one of all, unlocked, locked, coming_soon"}
	}

	out := make([]CatalogEntry, 0, len(c.items))
	for _, it := range c.items {
		st := it.StatusFor(balance)
		if want != "" && st != want {
			continue
		}
		out = append(out, CatalogEntry{CatalogItem: it, Status: st})
	}
	return out, nil
}
