package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ApplyStats counts the rows written by ApplyBatch
type ApplyStats struct {
	Products        int      `json:"products"`
	Items           int      `json:"items"`
	BOM             int      `json:"bom"`
	Production      int      `json:"production"`
	Allocations     int      `json:"allocations"`
	RegisteredShops []string `json:"registeredShops,omitempty"`
}

// ApplyBatch upserts a batch keyed by the workbook's natural codes.
// It is meant to run inside a transaction; a failing statement leaves the
// transaction aborted and the caller rolls back.
func ApplyBatch(ctx context.Context, db DBTX, b *Batch) (*ApplyStats, error) {
	stats := &ApplyStats{}

	shops, err := registerShops(ctx, db, b.Allocations)
	if err != nil {
		return nil, err
	}
	stats.RegisteredShops = shops

	batch := &pgx.Batch{}
	for _, p := range b.Products {
		batch.Queue(`
			INSERT INTO products (code, name, unit, base_unit, unit_cost, pack_size, pack_unit, waste_pct, supplier, category, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				unit = EXCLUDED.unit,
				base_unit = EXCLUDED.base_unit,
				unit_cost = EXCLUDED.unit_cost,
				pack_size = EXCLUDED.pack_size,
				pack_unit = EXCLUDED.pack_unit,
				waste_pct = EXCLUDED.waste_pct,
				supplier = EXCLUDED.supplier,
				category = EXCLUDED.category,
				updated_at = NOW()
		`, p.Code, p.Name, p.Unit, p.BaseUnit, p.UnitCost, p.PackSize, p.PackUnit, p.WastePct, p.Supplier, p.Category)
	}
	for _, it := range b.Items {
		batch.Queue(`
			INSERT INTO items (code, name, category, yield_qty, notes, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				yield_qty = EXCLUDED.yield_qty,
				notes = EXCLUDED.notes,
				updated_at = NOW()
		`, it.Code, it.Name, it.Category, it.YieldQty, it.Notes)
	}
	for _, l := range b.BOM {
		batch.Queue(`
			INSERT INTO bom (item_code, product_code, qty, unit, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (item_code, product_code) DO UPDATE SET
				qty = EXCLUDED.qty,
				unit = EXCLUDED.unit,
				updated_at = NOW()
		`, l.ItemCode, l.ProductCode, l.Qty, l.Unit)
	}
	for _, p := range b.Production {
		batch.Queue(`
			INSERT INTO production (date, item_code, total_qty, note, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (date, item_code) DO UPDATE SET
				total_qty = EXCLUDED.total_qty,
				note = EXCLUDED.note,
				updated_at = NOW()
		`, p.Date, p.ItemCode, p.TotalQty, p.Note)
	}
	for _, a := range b.Allocations {
		batch.Queue(`
			INSERT INTO allocations (date, item_code, shop_code, qty, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (date, item_code, shop_code) DO UPDATE SET
				qty = EXCLUDED.qty,
				updated_at = NOW()
		`, a.Date, a.ItemCode, a.ShopCode, a.Qty)
	}

	if batch.Len() == 0 {
		return stats, nil
	}

	results := db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to upsert row %d of batch: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	stats.Products = len(b.Products)
	stats.Items = len(b.Items)
	stats.BOM = len(b.BOM)
	stats.Production = len(b.Production)
	stats.Allocations = len(b.Allocations)
	return stats, nil
}

// registerShops creates pending shops for codes not seen before and returns
// the codes that were created
func registerShops(ctx context.Context, db DBTX, allocations []Allocation) ([]string, error) {
	seen := make(map[string]bool)
	var created []string

	for _, a := range allocations {
		if seen[a.ShopCode] {
			continue
		}
		seen[a.ShopCode] = true

		var code string
		err := db.QueryRow(ctx, `
			INSERT INTO shops (code, name, status, created_at)
			VALUES ($1, $2, 'pending', NOW())
			ON CONFLICT (code) DO NOTHING
			RETURNING code
		`, a.ShopCode, "Filiale "+a.ShopCode).Scan(&code)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to register shop %s: %w", a.ShopCode, err)
		}

		log.Info().Str("shop_code", code).Msg("Auto-registered shop")
		created = append(created, code)
	}
	return created, nil
}

// ListShops returns all shops ordered by code
func ListShops(ctx context.Context, db DBTX) ([]Shop, error) {
	rows, err := db.Query(ctx, `SELECT code, name, status, created_at FROM shops ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	var shops []Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.Code, &s.Name, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}
