// Package batch drives the two phases of a run: parsing property files
// into per-embryo tables, and aligning all stored embryos onto the
// reference clock and scale.
package batch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/acov-bio/acov/internal/align"
	"github.com/acov-bio/acov/internal/astec"
	"github.com/acov-bio/acov/internal/config"
	"github.com/acov-bio/acov/internal/db"
	"github.com/acov-bio/acov/internal/embryo"
	"github.com/acov-bio/acov/internal/tables"
)

type Pipeline struct {
	DB  *db.DB
	Cfg *config.Config
}

// ParseReport summarizes one parse phase. A malformed property file only
// fails its own embryo; the rest of the batch proceeds.
type ParseReport struct {
	Parsed []string
	Failed map[string]error
}

// EmbryoName derives the embryo name from a property file path: the base
// name up to the first dot, so "Astec-pm3.xml" names the embryo
// "Astec-pm3".
func EmbryoName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// Parse loads each property file, builds its multi-resolution tables and
// persists them, replacing any previous parse of the same embryo. Files
// are processed concurrently, bounded by the configured worker count.
func (p *Pipeline) Parse(ctx context.Context, paths []string) (*ParseReport, error) {
	codec := embryo.IDCodec{KDigits: p.Cfg.KDigits}

	report := &ParseReport{Failed: make(map[string]error)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Cfg.Workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			name := EmbryoName(path)
			err := p.parseOne(ctx, codec, path, name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[parse] %s: %v", name, err)
				report.Failed[name] = err
				return nil
			}
			log.Printf("[parse] %s: done", name)
			report.Parsed = append(report.Parsed, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(report.Parsed)
	return report, nil
}

func (p *Pipeline) parseOne(ctx context.Context, codec embryo.IDCodec, path, name string) error {
	raw, err := astec.Load(path)
	if err != nil {
		return err
	}
	tree, err := embryo.BuildTree(codec, raw)
	if err != nil {
		return err
	}
	ds, err := tables.Build(tree, name, p.Cfg.Geometry)
	if err != nil {
		return err
	}
	return p.DB.SaveDataset(ctx, ds)
}

// embryoFits holds the coefficients fitted for one embryo before any
// table is rewritten.
type embryoFits struct {
	coeff align.Coefficients
	corr  align.VoxelCorrection
	voxel *align.LineFit
}

// Align fits every stored embryo against the reference and rewrites the
// stored tables in place: volumes and surfaces normalized to the target
// volume when geometry is on, and minutes_post_fertilization filled in
// everywhere. All fits run before any rewrite, so a single embryo that
// cannot be aligned aborts the run with the tables untouched. Align
// assumes freshly parsed tables; rerunning it after a successful run
// would compound the voxelsize rescaling.
func (p *Pipeline) Align(ctx context.Context) error {
	all, err := p.DB.LoadAllEmbryoTables(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return &config.ConfigurationError{Detail: "no parsed embryos to align"}
	}
	refRows, ok := all[p.Cfg.Reference.Name]
	if !ok {
		return &config.ConfigurationError{Detail: fmt.Sprintf("reference embryo %q is not in the database", p.Cfg.Reference.Name)}
	}
	refSeries := align.NewCountSeries(refRows)

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	robust := align.RobustFitConfig{Samples: p.Cfg.VoxelFitSamples, Seed: p.Cfg.VoxelFitSeed}
	fits := make(map[string]embryoFits, len(names))
	for _, name := range names {
		rows := all[name]
		var f embryoFits
		if p.Cfg.Geometry {
			corr, line, err := align.FitVoxelCorrection(rows, p.Cfg.TargetVolume, robust)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			f.corr, f.voxel = corr, &line
		}
		coeff, err := align.FitTemporal(refSeries, align.NewCountSeries(rows))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		f.coeff = coeff
		fits[name] = f
		log.Printf("[align] %s: t' = %.4f*t + %.4f", name, coeff.A, coeff.B)
	}

	runID, err := p.DB.StartAlignmentRun(ctx, p.Cfg.Reference.Name, p.Cfg.Geometry)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Cfg.Workers)
	for _, name := range names {
		name := name
		f := fits[name]
		g.Go(func() error {
			if f.corr != nil {
				if err := p.DB.ApplyVoxelCorrection(ctx, name, f.corr); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			if err := p.DB.ApplyTemporalAlignment(ctx, name, f.coeff, p.Cfg.Reference); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return p.DB.RecordCoefficients(ctx, runID, name, f.coeff, f.voxel)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return p.DB.FinishAlignmentRun(ctx, runID)
}
