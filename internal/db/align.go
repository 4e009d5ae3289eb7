package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/acov-bio/acov/internal/align"
	"github.com/acov-bio/acov/internal/config"
)

// ApplyVoxelCorrection rewrites one embryo's stored volumes and surfaces
// in place. Volumes scale by the cube of the per-timepoint correction,
// surfaces by the square. Ratio columns are left alone since both sides
// of a ratio scale identically.
func (db *DB) ApplyVoxelCorrection(ctx context.Context, embryoName string, corr align.VoxelCorrection) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for tp, c := range corr {
		if c == 0 {
			continue
		}
		c2 := c * c
		c3 := c2 * c
		if _, err := tx.ExecContext(ctx, `
			UPDATE embryo_global SET volume = volume * ?, total_surface = total_surface * ?
			WHERE embryo = ? AND tp = ?
		`, c3, c2, embryoName, tp); err != nil {
			return fmt.Errorf("failed to rescale embryo_global: %w", err)
		}
		for _, table := range []string{"tissue_global", "cell_global"} {
			if _, err := tx.ExecContext(ctx, `
				UPDATE `+table+` SET volume = volume * ?, total_surface = total_surface * ?
				WHERE embryo = ? AND tp = ?
			`, c3, c2, embryoName, tp); err != nil {
				return fmt.Errorf("failed to rescale %s: %w", table, err)
			}
		}
		for _, table := range []string{"tissue_contacts", "cell_contacts"} {
			if _, err := tx.ExecContext(ctx, `
				UPDATE `+table+` SET surface = surface * ?
				WHERE embryo = ? AND tp = ?
			`, c2, embryoName, tp); err != nil {
				return fmt.Errorf("failed to rescale %s: %w", table, err)
			}
		}
	}

	return tx.Commit()
}

// ApplyTemporalAlignment fills in minutes_post_fertilization on every
// stored row of one embryo, computed from its fitted coefficients and the
// reference embryo's acquisition parameters.
func (db *DB) ApplyTemporalAlignment(ctx context.Context, embryoName string, coeff align.Coefficients, ref config.Reference) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tps, err := embryoTimepoints(ctx, tx, embryoName)
	if err != nil {
		return err
	}

	for _, tp := range tps {
		minutes := align.MinutesPostFertilization(tp, coeff, ref)
		for _, table := range []string{"embryo_global", "tissue_global", "cell_global", "tissue_contacts", "cell_contacts"} {
			if _, err := tx.ExecContext(ctx, `
				UPDATE `+table+` SET minutes_post_fertilization = ?
				WHERE embryo = ? AND tp = ?
			`, minutes, embryoName, tp); err != nil {
				return fmt.Errorf("failed to set minutes on %s: %w", table, err)
			}
		}
	}

	return tx.Commit()
}

func embryoTimepoints(ctx context.Context, tx queryer, embryoName string) ([]int, error) {
	rows, err := tx.QueryContext(ctx, "SELECT tp FROM embryo_global WHERE embryo = ? ORDER BY tp", embryoName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tps []int
	for rows.Next() {
		var tp int
		if err := rows.Scan(&tp); err != nil {
			return nil, err
		}
		tps = append(tps, tp)
	}
	return tps, rows.Err()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// StartAlignmentRun records the beginning of a batch alignment and returns
// its run id.
func (db *DB) StartAlignmentRun(ctx context.Context, reference string, geometry bool) (string, error) {
	runID := uuid.NewString()
	if _, err := db.ExecContext(ctx, `
		INSERT INTO alignment_runs (run_id, reference, geometry) VALUES (?, ?, ?)
	`, runID, reference, geometry); err != nil {
		return "", fmt.Errorf("failed to record alignment run: %w", err)
	}
	return runID, nil
}

// RecordCoefficients stores the fitted coefficients of one embryo within a
// run. The voxel fit is optional; pass nil when geometry is off.
func (db *DB) RecordCoefficients(ctx context.Context, runID, embryoName string, coeff align.Coefficients, voxel *align.LineFit) error {
	var voxelSlope, voxelIntercept sql.NullFloat64
	if voxel != nil {
		voxelSlope = sql.NullFloat64{Float64: voxel.Slope, Valid: true}
		voxelIntercept = sql.NullFloat64{Float64: voxel.Intercept, Valid: true}
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO alignment_coefficients (run_id, embryo, temporal_a, temporal_b, voxel_slope, voxel_intercept)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, embryoName, coeff.A, coeff.B, voxelSlope, voxelIntercept); err != nil {
		return fmt.Errorf("failed to record coefficients for %s: %w", embryoName, err)
	}
	return nil
}

// FinishAlignmentRun stamps the run's completion time.
func (db *DB) FinishAlignmentRun(ctx context.Context, runID string) error {
	if _, err := db.ExecContext(ctx, `
		UPDATE alignment_runs SET finished_at = CURRENT_TIMESTAMP WHERE run_id = ?
	`, runID); err != nil {
		return fmt.Errorf("failed to finish alignment run: %w", err)
	}
	return nil
}
