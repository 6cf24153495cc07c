package disposition

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/convictions/pkg/statute"
)

// DefaultWorkers is the number of dispositions classified concurrently when
// no worker count is configured.
const DefaultWorkers = 4

// Classifier resolves a raw statute. *statute.Classifier implements it.
type Classifier interface {
	Resolve(raw string) (*statute.Resolution, error)
}

// Stats summarizes an enrichment run.
type Stats struct {
	Total        int `json:"total"`
	Assigned     int `json:"assigned"`
	Ambiguous    int `json:"ambiguous"`
	NoStatute    int `json:"no_statute"`
	FormatErrors int `json:"format_errors"`
	ILCSErrors   int `json:"ilcs_errors"`
	IUCRErrors   int `json:"iucr_errors"`
}

// Add accumulates other into stats.
func (stats *Stats) Add(other Stats) {
	stats.Total += other.Total
	stats.Assigned += other.Assigned
	stats.Ambiguous += other.Ambiguous
	stats.NoStatute += other.NoStatute
	stats.FormatErrors += other.FormatErrors
	stats.ILCSErrors += other.ILCSErrors
	stats.IUCRErrors += other.IUCRErrors
}

type outcome int

const (
	outcomeAssigned outcome = iota
	outcomeAmbiguous
	outcomeNoStatute
	outcomeFormatError
	outcomeILCSError
	outcomeIUCRError
)

// Enricher assigns IUCR codes to dispositions from their final statute.
type Enricher struct {
	classifier Classifier
	logger     *zap.Logger
	workers    int
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithLogger sets the logger used for classification warnings.
func WithLogger(logger *zap.Logger) EnricherOption {
	return func(enricher *Enricher) {
		enricher.logger = logger
	}
}

// WithWorkers sets the number of concurrent classifications.
func WithWorkers(workers int) EnricherOption {
	return func(enricher *Enricher) {
		if workers > 0 {
			enricher.workers = workers
		}
	}
}

// NewEnricher creates an Enricher over classifier.
func NewEnricher(classifier Classifier, opts ...EnricherOption) *Enricher {
	enricher := &Enricher{
		classifier: classifier,
		logger:     zap.NewNop(),
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(enricher)
	}
	return enricher
}

// Enrich classifies each disposition in place. A single matching offense
// sets the IUCR code and category; ambiguous matches and classification
// errors are logged and counted but leave the disposition unassigned.
func (enricher *Enricher) Enrich(ctx context.Context, dispositions []*Disposition) (Stats, error) {
	outcomes := make([]outcome, len(dispositions))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enricher.workers)
	for i, disposition := range dispositions {
		if err := groupCtx.Err(); err != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := enricher.enrichOne(disposition)
			if err != nil {
				return err
			}
			outcomes[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(dispositions)}
	for _, result := range outcomes {
		switch result {
		case outcomeAssigned:
			stats.Assigned++
		case outcomeAmbiguous:
			stats.Ambiguous++
		case outcomeNoStatute:
			stats.NoStatute++
		case outcomeFormatError:
			stats.FormatErrors++
		case outcomeILCSError:
			stats.ILCSErrors++
		case outcomeIUCRError:
			stats.IUCRErrors++
		}
	}
	return stats, nil
}

func (enricher *Enricher) enrichOne(disposition *Disposition) (outcome, error) {
	disposition.IUCRCode = ""
	disposition.IUCRCategory = ""
	disposition.Inchoate = ""

	if disposition.FinalStatute == "" {
		return outcomeNoStatute, nil
	}

	resolution, err := enricher.classifier.Resolve(disposition.FinalStatute)
	if resolution != nil && resolution.Modifier != nil {
		disposition.Inchoate = string(resolution.Modifier.Kind)
	}
	if err != nil {
		return enricher.classifyError(disposition, err)
	}

	if resolution.Ambiguous() {
		codes := make([]string, len(resolution.Offenses))
		for i, offense := range resolution.Offenses {
			codes[i] = offense.Code
		}
		enricher.logger.Warn("Multiple matching IUCR offenses found for statute",
			zap.String("case_number", disposition.CaseNumber),
			zap.String("statute", disposition.FinalStatute),
			zap.Strings("codes", codes))
		return outcomeAmbiguous, nil
	}
	if len(resolution.Offenses) == 0 {
		return enricher.classifyError(disposition, &statute.IUCRLookupError{
			RawStatute: disposition.FinalStatute,
			Citation:   resolution.Citation,
		})
	}

	offense := resolution.Offenses[0]
	disposition.IUCRCode = offense.Code
	disposition.IUCRCategory = offense.Category
	return outcomeAssigned, nil
}

func (enricher *Enricher) classifyError(disposition *Disposition, err error) (outcome, error) {
	var (
		formatErr *statute.FormatError
		ilcsErr   *statute.ILCSLookupError
		iucrErr   *statute.IUCRLookupError
		result    outcome
	)
	switch {
	case errors.As(err, &formatErr):
		result = outcomeFormatError
	case errors.As(err, &ilcsErr):
		result = outcomeILCSError
	case errors.As(err, &iucrErr):
		result = outcomeIUCRError
	default:
		return 0, fmt.Errorf("failed to classify statute %q for case %q: %w",
			disposition.FinalStatute, disposition.CaseNumber, err)
	}

	enricher.logger.Warn("Unable to classify statute",
		zap.String("case_number", disposition.CaseNumber),
		zap.String("statute", disposition.FinalStatute),
		zap.Error(err))
	return result, nil
}
