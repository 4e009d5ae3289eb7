package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/acov-bio/acov/internal/tables"
)

// SaveDataset writes one embryo's tables, replacing any previous rows for
// that embryo in a single transaction.
func (db *DB) SaveDataset(ctx context.Context, ds *tables.Dataset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"embryo_global", "tissue_global", "cell_global", "tissue_contacts", "cell_contacts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE embryo = ?", ds.Name); err != nil {
			return fmt.Errorf("failed to clear %s for %s: %w", table, ds.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO embryos (embryo, geometry) VALUES (?, ?)
		ON CONFLICT(embryo) DO UPDATE SET geometry = excluded.geometry, parsed_at = CURRENT_TIMESTAMP
	`, ds.Name, ds.Geometry); err != nil {
		return fmt.Errorf("failed to register embryo %s: %w", ds.Name, err)
	}

	for _, row := range ds.Embryo {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO embryo_global (embryo, tp, volume, total_surface, cell_count, minutes_post_fertilization)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ds.Name, row.Tp, row.Volume, row.TotalSurface, row.CellCount, nullInt(row.Minutes)); err != nil {
			return fmt.Errorf("failed to insert embryo_global row: %w", err)
		}
	}

	if err := insertGlobalRows(ctx, tx, "tissue_global", ds.Name, ds.Geometry, ds.Tissue.Global); err != nil {
		return err
	}
	if err := insertGlobalRows(ctx, tx, "cell_global", ds.Name, ds.Geometry, ds.Cell.Global); err != nil {
		return err
	}
	if err := insertContactRows(ctx, tx, "tissue_contacts", ds.Name, ds.Geometry, ds.Tissue.Contacts); err != nil {
		return err
	}
	if err := insertContactRows(ctx, tx, "cell_contacts", ds.Name, ds.Geometry, ds.Cell.Contacts); err != nil {
		return err
	}

	return tx.Commit()
}

func insertGlobalRows(ctx context.Context, tx *sql.Tx, table, embryoName string, geometry bool, rows []tables.GlobalRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+table+` (embryo, tp, object, volume, cell_count, total_surface, volume_ratio, embryo_cell_count, minutes_post_fertilization)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range rows {
		totalSurface := sql.NullFloat64{Float64: row.TotalSurface, Valid: geometry}
		volumeRatio := sql.NullFloat64{Float64: row.VolumeRatio, Valid: geometry}
		if _, err := stmt.ExecContext(ctx, embryoName, row.Tp, row.Object, row.Volume, row.CellCount,
			totalSurface, volumeRatio, row.EmbryoCellCount, nullInt(row.Minutes)); err != nil {
			return fmt.Errorf("failed to insert %s row: %w", table, err)
		}
	}
	return nil
}

func insertContactRows(ctx context.Context, tx *sql.Tx, table, embryoName string, geometry bool, rows []tables.ContactRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+table+` (embryo, tp, object, neighbor, surface, surface_ratio, embryo_cell_count, minutes_post_fertilization)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range rows {
		surfaceRatio := sql.NullFloat64{Float64: row.SurfaceRatio, Valid: geometry}
		if _, err := stmt.ExecContext(ctx, embryoName, row.Tp, row.Object, row.Neighbor, row.Surface,
			surfaceRatio, row.EmbryoCellCount, nullInt(row.Minutes)); err != nil {
			return fmt.Errorf("failed to insert %s row: %w", table, err)
		}
	}
	return nil
}

// ListEmbryos returns the names of all persisted embryos.
func (db *DB) ListEmbryos(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT embryo FROM embryos ORDER BY embryo")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadEmbryoTable loads the embryo-resolution table of one embryo.
func (db *DB) LoadEmbryoTable(ctx context.Context, embryoName string) ([]tables.EmbryoRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tp, volume, total_surface, cell_count, minutes_post_fertilization
		FROM embryo_global WHERE embryo = ? ORDER BY tp
	`, embryoName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []tables.EmbryoRow
	for rows.Next() {
		var row tables.EmbryoRow
		var minutes sql.NullInt64
		if err := rows.Scan(&row.Tp, &row.Volume, &row.TotalSurface, &row.CellCount, &minutes); err != nil {
			return nil, err
		}
		row.Minutes = intPtr(minutes)
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadAllEmbryoTables loads every embryo's embryo-resolution table, the
// input of the batch alignment fits.
func (db *DB) LoadAllEmbryoTables(ctx context.Context) (map[string][]tables.EmbryoRow, error) {
	names, err := db.ListEmbryos(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]tables.EmbryoRow, len(names))
	for _, name := range names {
		t, err := db.LoadEmbryoTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load embryo table for %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// LoadDataset reloads one embryo's full dataset.
func (db *DB) LoadDataset(ctx context.Context, embryoName string) (*tables.Dataset, error) {
	ds := &tables.Dataset{Name: embryoName}
	err := db.QueryRowContext(ctx, "SELECT geometry FROM embryos WHERE embryo = ?", embryoName).Scan(&ds.Geometry)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unknown embryo %q", embryoName)
	}
	if err != nil {
		return nil, err
	}

	if ds.Embryo, err = db.LoadEmbryoTable(ctx, embryoName); err != nil {
		return nil, err
	}
	if ds.Tissue.Global, err = db.loadGlobalRows(ctx, "tissue_global", embryoName); err != nil {
		return nil, err
	}
	if ds.Cell.Global, err = db.loadGlobalRows(ctx, "cell_global", embryoName); err != nil {
		return nil, err
	}
	if ds.Tissue.Contacts, err = db.loadContactRows(ctx, "tissue_contacts", embryoName); err != nil {
		return nil, err
	}
	if ds.Cell.Contacts, err = db.loadContactRows(ctx, "cell_contacts", embryoName); err != nil {
		return nil, err
	}
	return ds, nil
}

func (db *DB) loadGlobalRows(ctx context.Context, table, embryoName string) ([]tables.GlobalRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tp, object, volume, cell_count, total_surface, volume_ratio, embryo_cell_count, minutes_post_fertilization
		FROM `+table+` WHERE embryo = ? ORDER BY tp, object
	`, embryoName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []tables.GlobalRow
	for rows.Next() {
		var row tables.GlobalRow
		var totalSurface, volumeRatio sql.NullFloat64
		var minutes sql.NullInt64
		if err := rows.Scan(&row.Tp, &row.Object, &row.Volume, &row.CellCount, &totalSurface, &volumeRatio, &row.EmbryoCellCount, &minutes); err != nil {
			return nil, err
		}
		row.TotalSurface = totalSurface.Float64
		row.VolumeRatio = volumeRatio.Float64
		row.Minutes = intPtr(minutes)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (db *DB) loadContactRows(ctx context.Context, table, embryoName string) ([]tables.ContactRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tp, object, neighbor, surface, surface_ratio, embryo_cell_count, minutes_post_fertilization
		FROM `+table+` WHERE embryo = ? ORDER BY tp, object, neighbor
	`, embryoName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []tables.ContactRow
	for rows.Next() {
		var row tables.ContactRow
		var surfaceRatio sql.NullFloat64
		var minutes sql.NullInt64
		if err := rows.Scan(&row.Tp, &row.Object, &row.Neighbor, &row.Surface, &surfaceRatio, &row.EmbryoCellCount, &minutes); err != nil {
			return nil, err
		}
		row.SurfaceRatio = surfaceRatio.Float64
		row.Minutes = intPtr(minutes)
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
