package regression

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Engine fits next-month returns on brightness changes with a categorical
// fixed effect per year-month. The fixed effects are absorbed through the
// standard within transformation: both variables are demeaned inside each
// year-month group before the slope is estimated.
type Engine struct {
	logger    *slog.Logger
	clusterBy domain.ClusterBy
}

// EngineConfig holds configuration options for the Engine.
type EngineConfig struct {
	// ClusterBy selects standard-error clustering. ClusterNone is the
	// i.i.d. baseline.
	ClusterBy domain.ClusterBy
}

// NewEngine creates a new fixed-effects regression engine.
func NewEngine(logger *slog.Logger, cfg EngineConfig) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	clusterBy := cfg.ClusterBy
	if clusterBy == "" {
		clusterBy = domain.ClusterNone
	}
	return &Engine{logger: logger, clusterBy: clusterBy}
}

// observation is one regression data point after sample selection.
type observation struct {
	x       float64 // brightness change
	y       float64 // forward one-month return
	group   domain.YearMonth
	cluster string
}

// Fit estimates the model on the complete-observation subset of the panel.
// Year-month groups with a single complete observation are perfectly
// absorbed by their own fixed effect and carry no information, so they are
// excluded from the sample; fewer than two usable groups aborts the fit
// with an insufficient-variation error rather than a degenerate result.
func (e *Engine) Fit(ctx context.Context, rows []domain.PanelRow) (*domain.RegressionResult, error) {
	sample, droppedSingletons := e.selectSample(rows)

	groups := make(map[domain.YearMonth]bool)
	for _, obs := range sample {
		groups[obs.group] = true
	}

	e.logger.InfoContext(ctx, "fitting fixed-effects regression",
		slog.Int("panel_rows", len(rows)),
		slog.Int("sample_size", len(sample)),
		slog.Int("fixed_effect_levels", len(groups)),
		slog.Int("dropped_singleton_groups", droppedSingletons),
		slog.String("cluster_by", string(e.clusterBy)))

	if len(groups) < 2 {
		return nil, apperrors.NewInsufficientVariationError(len(groups))
	}

	n := len(sample)
	residualDF := n - len(groups) - 1
	if residualDF < 1 {
		return nil, apperrors.NewInsufficientVariationError(len(groups))
	}

	// Within transformation: demean x and y inside each year-month group.
	xTilde, yTilde := demeanWithinGroups(sample)

	_, beta := stat.LinearRegression(xTilde, yTilde, nil, true)
	sxx := 0.0
	for _, x := range xTilde {
		sxx += x * x
	}
	if sxx == 0 || math.IsNaN(beta) {
		// No within-group variation in the regressor: the slope is not
		// identified.
		return nil, apperrors.NewInsufficientVariationError(len(groups))
	}

	residuals := make([]float64, n)
	rss := 0.0
	for i := range sample {
		residuals[i] = yTilde[i] - beta*xTilde[i]
		rss += residuals[i] * residuals[i]
	}

	stdErr, nClusters, err := e.standardError(sample, xTilde, residuals, sxx, rss, residualDF)
	if err != nil {
		return nil, err
	}

	result := &domain.RegressionResult{
		Coefficient:       beta,
		StdErr:            stdErr,
		TStat:             beta / stdErr,
		RSquared:          overallRSquared(sample, rss),
		NObs:              n,
		FixedEffectLevels: len(groups),
		DroppedSingletons: droppedSingletons,
		ClusterBy:         e.clusterBy,
		NClusters:         nClusters,
	}

	e.logger.InfoContext(ctx, "regression fit complete",
		slog.Float64("coefficient", result.Coefficient),
		slog.Float64("std_err", result.StdErr),
		slog.Float64("t_stat", result.TStat),
		slog.Float64("r_squared", result.RSquared),
		slog.Int("n_observations", result.NObs))

	return result, nil
}

// selectSample filters complete rows and drops singleton year-month groups.
func (e *Engine) selectSample(rows []domain.PanelRow) ([]observation, int) {
	groupSizes := make(map[domain.YearMonth]int)
	for _, row := range rows {
		if row.Complete() {
			groupSizes[row.Month]++
		}
	}

	droppedSingletons := 0
	for _, size := range groupSizes {
		if size < 2 {
			droppedSingletons++
		}
	}

	var sample []observation
	for _, row := range rows {
		if !row.Complete() || groupSizes[row.Month] < 2 {
			continue
		}
		sample = append(sample, observation{
			x:       *row.BrightnessChange,
			y:       *row.RetFwd1M,
			group:   row.Month,
			cluster: e.clusterKey(row),
		})
	}

	// Keep the design matrix order independent of input ordering.
	sort.SliceStable(sample, func(i, j int) bool {
		if sample[i].group != sample[j].group {
			return sample[i].group.Before(sample[j].group)
		}
		return sample[i].cluster < sample[j].cluster
	})

	return sample, droppedSingletons
}

// clusterKey extracts the clustering group of a row.
func (e *Engine) clusterKey(row domain.PanelRow) string {
	switch e.clusterBy {
	case domain.ClusterTicker:
		return row.Ticker
	case domain.ClusterCounty:
		return row.CountyID
	case domain.ClusterYearMonth:
		return row.Month.String()
	default:
		return row.Ticker
	}
}

// demeanWithinGroups subtracts the year-month group mean from both variables.
func demeanWithinGroups(sample []observation) (xTilde, yTilde []float64) {
	type moments struct {
		sumX, sumY float64
		count      int
	}
	byGroup := make(map[domain.YearMonth]*moments)
	for _, obs := range sample {
		m := byGroup[obs.group]
		if m == nil {
			m = &moments{}
			byGroup[obs.group] = m
		}
		m.sumX += obs.x
		m.sumY += obs.y
		m.count++
	}

	xTilde = make([]float64, len(sample))
	yTilde = make([]float64, len(sample))
	for i, obs := range sample {
		m := byGroup[obs.group]
		xTilde[i] = obs.x - m.sumX/float64(m.count)
		yTilde[i] = obs.y - m.sumY/float64(m.count)
	}
	return xTilde, yTilde
}

// standardError computes the slope standard error, i.i.d. or cluster-robust.
func (e *Engine) standardError(
	sample []observation,
	xTilde, residuals []float64,
	sxx, rss float64,
	residualDF int,
) (stdErr float64, nClusters int, err error) {
	if e.clusterBy == domain.ClusterNone {
		variance := rss / float64(residualDF) / sxx
		return math.Sqrt(variance), 0, nil
	}

	// Cluster-robust (CR1) variance with the usual small-sample adjustment.
	scores := make(map[string]float64)
	for i, obs := range sample {
		scores[obs.cluster] += xTilde[i] * residuals[i]
	}
	nClusters = len(scores)
	if nClusters < 2 {
		return 0, 0, apperrors.NewValidationError(
			"clustered standard errors need at least 2 clusters")
	}

	meat := 0.0
	for _, score := range scores {
		meat += score * score
	}

	n := float64(len(sample))
	g := float64(nClusters)
	adjustment := g / (g - 1) * (n - 1) / float64(residualDF)
	variance := adjustment * meat / (sxx * sxx)

	return math.Sqrt(variance), nClusters, nil
}

// overallRSquared is the R² of the full model including the absorbed fixed
// effects: fitted values are the group mean plus the slope contribution.
func overallRSquared(sample []observation, rss float64) float64 {
	ys := make([]float64, len(sample))
	for i, obs := range sample {
		ys[i] = obs.y
	}
	mean := stat.Mean(ys, nil)

	tss := 0.0
	for _, y := range ys {
		tss += (y - mean) * (y - mean)
	}
	if tss == 0 {
		return 0
	}
	return 1 - rss/tss
}
