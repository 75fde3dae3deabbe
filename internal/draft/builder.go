package draft

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"careagenda/internal/directory"
	"careagenda/internal/extract"
	"careagenda/internal/logging"
	"careagenda/internal/match"
	"careagenda/internal/temporal"
)

// Extractor is the external raw-text extraction collaborator.
type Extractor interface {
	Extract(ctx context.Context, text string) (extract.Payload, error)
}

// DirectoryFetcher supplies the per-request contact snapshot.
type DirectoryFetcher interface {
	Fetch(ctx context.Context) (*directory.Index, error)
}

// Builder orchestrates the extractor, the temporal normalizer, and the
// fuzzy matcher into a warning-annotated draft. Collaborator failures never
// abort a build; they degrade the draft and add a warning.
type Builder struct {
	extractor   Extractor
	directory   DirectoryFetcher
	normalizer  *temporal.Normalizer
	matchConfig match.Config
	logger      logging.Logger
}

// NewBuilder wires the draft builder.
func NewBuilder(extractor Extractor, fetcher DirectoryFetcher, normalizer *temporal.Normalizer, matchConfig match.Config, logger logging.Logger) *Builder {
	return &Builder{
		extractor:   extractor,
		directory:   fetcher,
		normalizer:  normalizer,
		matchConfig: matchConfig,
		logger:      logging.OrNop(logger),
	}
}

// Build prepares a draft from dictated text. The extraction call and the
// directory fetch run concurrently under ctx's deadline; on deadline the
// best-effort draft is returned with a warning rather than an error.
func (b *Builder) Build(ctx context.Context, rawText string, referenceNow time.Time) *EventDraft {
	d := &EventDraft{
		Intent:   ClassifyIntent(rawText),
		Warnings: []string{},
	}

	var (
		payload    extract.Payload
		extractErr error
		index      *directory.Index
		dirErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, extractErr = b.extractor.Extract(gctx, rawText)
		return nil
	})
	g.Go(func() error {
		index, dirErr = b.directory.Fetch(gctx)
		return nil
	})
	// Goroutines only record, never fail; degradation is decided here.
	_ = g.Wait()

	if extractErr != nil {
		b.logger.Warn("extraction degraded: %v", extractErr)
		d.Warnings = append(d.Warnings, "extraction indisponible: brouillon construit sans analyse")
		payload = extract.Payload{Kind: extract.KindFreeform}
	}
	if dirErr != nil {
		b.logger.Warn("directory degraded: %v", dirErr)
		d.Warnings = append(d.Warnings, "annuaire indisponible: participants non resolus")
		index = directory.NewIndex(nil)
	}

	extraction := extract.ToExtraction(payload)
	d.RawExtraction = extraction
	d.Description = extraction.Description
	d.Location = extraction.Location

	b.resolveParticipants(d, extraction.Participants, index)
	b.resolveTime(d, extraction, referenceNow)

	if len(d.Participants) == 0 {
		d.Warnings = append(d.Warnings, "aucun participant detecte")
	}
	if d.Start == nil {
		d.Warnings = append(d.Warnings, "aucune date ou heure detectee")
	}

	return d
}

// resolveParticipants matches each mention against the directory snapshot.
// Duplicate mentions of the same contact (or the same raw name) collapse
// into one entry with a warning, so no resolvedId appears twice.
func (b *Builder) resolveParticipants(d *EventDraft, mentions []string, index *directory.Index) {
	seenIDs := make(map[string]bool)
	seenInputs := make(map[string]bool)

	for _, mention := range mentions {
		mention = strings.TrimSpace(mention)
		if mention == "" {
			continue
		}

		normalized := match.Normalize(mention)
		if seenInputs[normalized] {
			d.Warnings = append(d.Warnings, "mention en double ignoree: "+mention)
			continue
		}
		seenInputs[normalized] = true

		result := match.Resolve(mention, index, b.matchConfig)
		pm := ParticipantMatch{
			InputName:    result.InputName,
			Status:       result.Status,
			ResolvedID:   result.ResolvedID,
			ResolvedName: result.ResolvedName,
			Score:        result.Score,
			Candidates:   result.Candidates,
		}

		if pm.Status == match.StatusMatched {
			if seenIDs[pm.ResolvedID] {
				d.Warnings = append(d.Warnings, "mention en double ignoree: "+mention)
				continue
			}
			seenIDs[pm.ResolvedID] = true
		}

		if pm.Status == match.StatusUnmatched {
			pm.ProposedContact = &directory.ProposedContact{Name: mention}
		}

		d.Participants = append(d.Participants, pm)
	}
}

// resolveTime feeds the extractor's temporal fragments to the normalizer.
// The normalizer already lets an explicit stop win over a duration-derived
// one.
func (b *Builder) resolveTime(d *EventDraft, extraction extract.Extraction, referenceNow time.Time) {
	fragment := strings.TrimSpace(strings.Join(nonEmpty(
		extraction.DateText,
		extraction.TimeText,
		durationFragment(extraction.DurationText),
	), " "))
	if fragment == "" {
		return
	}

	result := b.normalizer.Normalize(fragment, referenceNow)
	d.Start = result.Start
	d.Stop = result.Stop
	d.Warnings = append(d.Warnings, result.Warnings...)
}

// durationFragment prefixes a bare duration ("30 minutes") with "pendant"
// so the normalizer reads it as a duration, not a time of day.
func durationFragment(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, marker := range []string{"pour ", "pendant ", "durant "} {
		if strings.HasPrefix(lower, marker) {
			return text
		}
	}
	return "pendant " + text
}

func nonEmpty(values ...string) []string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
