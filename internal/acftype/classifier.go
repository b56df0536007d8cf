package acftype

import (
	"fmt"
	"log/slog"
)

// Classification is the result of one probing pass.
type Classification struct {
	Variant Variant
	// ICAO is the sanitized, possibly corrected, type designator.
	ICAO string
	// ReportedICAO is the sanitized designator the aircraft reported.
	ReportedICAO string
	Engines      Engines
	// Signature is the plugin signature that selected the variant.
	Signature string
	// Rule describes which test decided the classification.
	Rule string
	// Fallback is set when a signature matched but no secondary evidence
	// did, so the family default was used.
	Fallback bool
}

// ICAOCorrected reports whether the designator must be written back.
func (c Classification) ICAOCorrected() bool {
	return c.ICAO != "" && c.ICAO != c.ReportedICAO
}

func (c Classification) String() string {
	return fmt.Sprintf("%s (%s)", c.Variant, c.ICAO)
}

// Classifier runs the ordered decision list over an evidence bundle.
type Classifier struct {
	log         *slog.Logger
	buckets     []Bucket
	corrections []Correction
}

// NewClassifier returns a classifier using the built-in tables.
func NewClassifier(log *slog.Logger) *Classifier {
	return NewClassifierWithRules(log, DefaultBuckets, DefaultCorrections)
}

// NewClassifierWithRules returns a classifier using the given tables.
func NewClassifierWithRules(log *slog.Logger, buckets []Bucket, corrections []Correction) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{log: log, buckets: buckets, corrections: corrections}
}

// Signatures lists every plugin signature the classifier looks for, in
// decision order.
func (c *Classifier) Signatures() []string {
	out := make([]string, 0, len(c.buckets))
	seen := make(map[string]bool, len(c.buckets))
	for _, b := range c.buckets {
		if !seen[b.Signature] {
			seen[b.Signature] = true
			out = append(out, b.Signature)
		}
	}
	return out
}

// Classify returns exactly one classification for ev. The first matching
// rule wins; Generic is returned when nothing matches.
func (c *Classifier) Classify(ev Evidence) Classification {
	reported := SanitizeICAO(ev.ICAO)
	cl := Classification{
		Variant:      Generic,
		ICAO:         reported,
		ReportedICAO: reported,
		Engines:      NormalizeEngines(ev.EngineCount, ev.EngineTypes),
		Rule:         "generic",
	}

	for _, b := range c.buckets {
		if !ev.HasPlugin(b.Signature) {
			continue
		}
		if len(b.Candidates) > 0 && !evidenceReadable(ev, b.Candidates) {
			c.log.Debug("Plugin present but its evidence fields are empty",
				"signature", b.Signature)
			continue
		}

		cl.Signature = b.Signature
		cl.Variant = b.Default
		cl.Rule = "signature " + b.Signature
		matched := len(b.Candidates) == 0
		for _, cand := range b.Candidates {
			if cand.Probe.Match(ev) {
				cl.Variant = cand.Variant
				cl.Rule = "signature " + b.Signature + ", " + cand.Probe.String()
				matched = true
				break
			}
		}

		info := cl.Variant.Info()
		if matched {
			if info.ICAO != "" {
				cl.ICAO = info.ICAO
			}
		} else {
			// The family is known but the exact member is not; keep the
			// designator the aircraft reported unless it has none.
			cl.Fallback = true
			cl.Rule = "signature " + b.Signature + ", family default"
			if cl.ICAO == "" {
				cl.ICAO = info.ICAO
			}
			c.log.Warn("No secondary evidence matched, using family default",
				"signature", b.Signature,
				"variant", cl.Variant.String(),
				"author", trimField(ev.Author),
				"description", trimField(ev.Description),
				"icao", reported)
		}
		c.log.Debug("Aircraft classified",
			"variant", cl.Variant.String(),
			"rule", cl.Rule,
			"icao", cl.ICAO)
		return cl
	}

	for _, corr := range c.corrections {
		if corr.Probe.Match(ev) {
			cl.ICAO = corr.ICAO
			cl.Rule = "correction " + corr.Probe.String()
			c.log.Debug("Stock aircraft designator correction matched",
				"rule", cl.Rule,
				"icao", cl.ICAO)
			return cl
		}
	}

	c.log.Debug("No rule matched, aircraft is generic", "icao", cl.ICAO)
	return cl
}

// evidenceReadable reports whether at least one field the candidates look
// at carries data.
func evidenceReadable(ev Evidence, cands []Candidate) bool {
	for _, cand := range cands {
		if trimField(ev.Field(cand.Probe.Field)) != "" {
			return true
		}
	}
	return false
}
