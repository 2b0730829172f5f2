package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseModel is the base model for all entities
type BaseModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty" swaggerignore:"true"`
}

// BeforeCreate hook to generate UUID if not set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Shop represents a connected storefront whose orders are ingested upstream
type Shop struct {
	BaseModel
	Name     string `gorm:"not null" json:"name" validate:"required"`
	Platform string `json:"platform"` // shoptet, woocommerce, custom
	Domain   string `json:"domain"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Product represents a catalog product (read-only here, owned by ingestion)
type Product struct {
	BaseModel
	ShopID      uuid.UUID `gorm:"type:uuid;index;not null;constraint:OnDelete:RESTRICT" json:"shop_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	EAN         string    `gorm:"column:ean" json:"ean"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// ProductVariant represents a sellable variant of a product
type ProductVariant struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index;not null;constraint:OnDelete:RESTRICT" json:"product_id"`
	Code      string    `gorm:"index" json:"code"`
	Name      string    `json:"name"`
	EAN       string    `gorm:"column:ean" json:"ean"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// Order represents an order as delivered by the ingestion pipeline.
// Monetary totals are stored both in the transaction currency and,
// when the importer could convert them, in the reporting base currency.
type Order struct {
	BaseModel
	ShopID      uuid.UUID  `gorm:"type:uuid;index;not null;constraint:OnDelete:RESTRICT" json:"shop_id"`
	OrderNumber string     `gorm:"not null" json:"order_number"`
	Status      string     `gorm:"index" json:"status"` // free-form, vocabulary differs per platform
	OrderedAt   *time.Time `gorm:"index" json:"ordered_at"`

	Currency         string           `gorm:"default:'CZK'" json:"currency"`
	TotalWithVAT     decimal.Decimal  `gorm:"type:numeric(14,2);default:0" json:"total_with_vat"`
	TotalWithVATBase *decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_with_vat_base"` // precomputed, authoritative when present

	// Customer identity is the normalized email; there is no customer table
	CustomerEmail *string `json:"customer_email"`

	// Loosely structured descriptors: plain string, JSON object or JSON array
	Payment  *string `gorm:"type:text" json:"payment"`
	Shipping *string `gorm:"type:text" json:"shipping"`

	// Relations
	Shop  *Shop       `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem represents one line of an order. Any of product reference,
// variant code or line name may be the only reliable identifier, so the
// three together form the composite product identity used by reports.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null;constraint:OnDelete:RESTRICT" json:"order_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index;constraint:OnDelete:SET NULL" json:"product_id"`
	VariantCode string          `gorm:"index" json:"variant_code"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,3);default:0" json:"amount"`   // quantity
	WithVAT     decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"with_vat"` // line revenue, order currency

	// Relations
	Order   *Order   `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// CurrencyRate holds one point-in-time conversion rate into the base currency
type CurrencyRate struct {
	BaseModel
	Code string          `gorm:"uniqueIndex;not null" json:"code"`
	Rate decimal.Decimal `gorm:"type:numeric(14,6);not null" json:"rate"` // amount * rate = amount in base currency
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&Shop{},
		&Product{},
		&ProductVariant{},
		&Order{},
		&OrderItem{},
		&CurrencyRate{},
	}
}
