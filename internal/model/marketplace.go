package model

import "time"

// 商品分类枚举
var ItemCategories = []string{
	"electronics", "clothing", "furniture", "books", "sports", "toys", "vehicles", "other",
}

// 商品成色枚举
var ItemConditions = []string{
	"new", "like_new", "good", "fair", "poor",
}

// MarketplaceItem 市场商品模型
type MarketplaceItem struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Images      []string  `json:"images"`
	Sold        bool      `json:"sold"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Profile     *Profile  `json:"profiles,omitempty"`
}

// ItemUpdate 商品可修改的字段
type ItemUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Condition   *string   `json:"condition,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

// ItemFilter 市场列表的过滤与排序条件
type ItemFilter struct {
	Category    string
	Condition   string
	MinPrice    *float64
	MaxPrice    *float64
	Search      string
	SortBy      string // created_at | price
	SortOrder   string // asc | desc
	IncludeSold bool
	SellerID    string
	Page        int
	Limit       int
}
