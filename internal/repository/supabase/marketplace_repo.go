package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	sb "socialmarket-backend/internal/supabase"
)

const itemSelect = "*,profiles(*)"

// MarketplaceRepository 商品存储库的 PostgREST 实现
type MarketplaceRepository struct {
	client *sb.Client
}

func NewMarketplaceRepository(client *sb.Client) *MarketplaceRepository {
	return &MarketplaceRepository{client}
}

func (r *MarketplaceRepository) List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int, error) {
	sortBy := filter.SortBy
	if sortBy != "price" {
		sortBy = "created_at"
	}

	q := r.client.From("marketplace_items").
		Select(itemSelect).
		Order(sortBy, filter.SortOrder == "asc").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Count()

	if !filter.IncludeSold {
		q = q.Eq("sold", "false")
	}
	if filter.SellerID != "" {
		q = q.Eq("seller_id", filter.SellerID)
	}
	if filter.Category != "" {
		q = q.Eq("category", filter.Category)
	}
	if filter.Condition != "" {
		q = q.Eq("condition", filter.Condition)
	}
	if filter.MinPrice != nil {
		q = q.Gte("price", fmt.Sprintf("%g", *filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		q = q.Lte("price", fmt.Sprintf("%g", *filter.MaxPrice))
	}
	if search := sanitizeSearch(filter.Search); search != "" {
		q = q.Or(fmt.Sprintf("(title.ilike.*%s*,description.ilike.*%s*)", search, search))
	}

	resp, err := q.Execute(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list items", err)
	}
	if err := resp.Err(); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list items", err)
	}

	var items []*model.MarketplaceItem
	if err := resp.JSON(&items); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list items", err)
	}
	if items == nil {
		items = []*model.MarketplaceItem{}
	}
	return items, resp.Total(), nil
}

// sanitizeSearch 去掉会破坏 or 过滤表达式语法的字符
func sanitizeSearch(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func (r *MarketplaceRepository) GetByID(ctx context.Context, id string) (*model.MarketplaceItem, error) {
	resp, err := r.client.From("marketplace_items").
		Select(itemSelect).
		Eq("id", id).
		Single().
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get item", err)
	}
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.New(apperrors.ErrItemNotFound, "Item not found")
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get item", err)
	}

	var item model.MarketplaceItem
	if err := resp.JSON(&item); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get item", err)
	}
	return &item, nil
}

func (r *MarketplaceRepository) Create(ctx context.Context, item *model.MarketplaceItem) error {
	resp, err := r.client.From("marketplace_items").Select(itemSelect).Insert(ctx, map[string]any{
		"seller_id":   item.SellerID,
		"title":       item.Title,
		"description": item.Description,
		"price":       item.Price,
		"category":    item.Category,
		"condition":   item.Condition,
		"images":      item.Images,
		"sold":        false,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create item", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create item", err)
	}

	var rows []model.MarketplaceItem
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create item", err)
	}
	*item = rows[0]
	if item.Images == nil {
		item.Images = []string{}
	}
	return nil
}

func (r *MarketplaceRepository) Update(ctx context.Context, id, sellerID string, upd *model.ItemUpdate) (*model.MarketplaceItem, error) {
	return r.conditionalPatch(ctx, id, sellerID, upd)
}

func (r *MarketplaceRepository) SetSold(ctx context.Context, id, sellerID string, sold bool) (*model.MarketplaceItem, error) {
	return r.conditionalPatch(ctx, id, sellerID, map[string]any{"sold": sold})
}

// conditionalPatch 带卖家过滤的更新，空结果按存在性归类 403/404
func (r *MarketplaceRepository) conditionalPatch(ctx context.Context, id, sellerID string, body any) (*model.MarketplaceItem, error) {
	resp, err := r.client.From("marketplace_items").
		Select(itemSelect).
		Eq("id", id).
		Eq("seller_id", sellerID).
		Update(ctx, body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update item", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update item", err)
	}

	var rows []model.MarketplaceItem
	if err := resp.JSON(&rows); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update item", err)
	}
	if len(rows) == 0 {
		return nil, r.ownershipError(ctx, id)
	}
	return &rows[0], nil
}

func (r *MarketplaceRepository) Delete(ctx context.Context, id, sellerID string) error {
	resp, err := r.client.From("marketplace_items").
		Eq("id", id).
		Eq("seller_id", sellerID).
		Delete(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete item", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete item", err)
	}

	var rows []model.MarketplaceItem
	if err := resp.JSON(&rows); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete item", err)
	}
	if len(rows) == 0 {
		return r.ownershipError(ctx, id)
	}
	return nil
}

func (r *MarketplaceRepository) ownershipError(ctx context.Context, id string) error {
	resp, err := r.client.From("marketplace_items").Select("id").Eq("id", id).Limit(1).Execute(ctx)
	if err != nil || resp.Err() != nil {
		return apperrors.New(apperrors.ErrItemNotFound, "Item not found")
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.New(apperrors.ErrItemNotFound, "Item not found")
	}
	return apperrors.New(apperrors.ErrForbidden, "Not authorized to modify this item")
}
