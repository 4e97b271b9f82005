package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/denoisegridgo/internal/kernel"
)

// Canonical returns the selection's identity string. The output is a pure
// function of the selection's content: regressor types are processed in the
// fixed enumeration order and censor thresholds are explicitly sorted, so two
// selections with the same content always canonicalize identically no matter
// how they were assembled.
//
// Per-type pieces are joined with '-', types with '_'. Example:
//
//	WM-2.00E-PC5-SDB_C-S-0+0-FD1.5SD
func (s *Selection) Canonical() string {
	var tokens []string
	for _, r := range RegressorOrder {
		token, ok := s.token(r)
		if ok {
			tokens = append(tokens, token)
		}
	}
	return strings.Join(tokens, "_")
}

// token emits the canonical token for one regressor type, reporting false
// when the type is not part of the selection.
func (s *Selection) token(r RegressorType) (string, bool) {
	pieces := []string{r.code()}

	switch r {
	case RegGreyMatter, RegWhiteMatter, RegCerebrospinalFluid:
		t := s.tissue(r)
		if t == nil {
			return "", false
		}
		pieces = append(pieces, resolutionPiece(t.ExtractionResolution, t.ErodeMask))
		pieces = append(pieces, summaryPiece(t.Summary))
		pieces = append(pieces, t.suffix())

	case RegTCompCor:
		t := s.TCompCor
		if t == nil {
			return "", false
		}
		var thr string
		if t.BySlice {
			thr += "S"
		}
		thr += thresholdPiece(t.Threshold, "%.2f")
		pieces = append(pieces, thr)
		pieces = append(pieces, summaryPiece(t.Summary))
		pieces = append(pieces, t.suffix())

	case RegACompCor:
		a := s.ACompCor
		if a == nil {
			return "", false
		}
		if len(a.Tissues) > 0 {
			codes := make([]string, len(a.Tissues))
			for i, tissue := range a.Tissues {
				codes[i] = tissue.code()
			}
			pieces = append(pieces, strings.Join(codes, "+"))
		}
		pieces = append(pieces, resolutionPiece(a.ExtractionResolution, a.ErodeMask))
		pieces = append(pieces, summaryPiece(a.Summary))
		pieces = append(pieces, a.suffix())

	case RegGlobalSignal:
		g := s.GlobalSignal
		if g == nil {
			return "", false
		}
		pieces = append(pieces, summaryPiece(g.Summary))
		pieces = append(pieces, g.suffix())

	case RegMotion:
		if s.Motion == nil {
			return "", false
		}
		pieces = append(pieces, s.Motion.suffix())

	case RegPolyOrt:
		if s.PolyOrt == nil {
			return "", false
		}
		pieces = append(pieces, fmt.Sprintf("%d", s.PolyOrt.Degree))

	case RegBandpass:
		b := s.Bandpass
		if b == nil {
			return "", false
		}
		pieces = append(pieces, fmt.Sprintf("T%.2f", b.TopFrequency))
		pieces = append(pieces, fmt.Sprintf("B%.2f", b.BottomFrequency))

	case RegCensor:
		c := s.Censor
		if c == nil {
			return "", false
		}
		pieces = append(pieces, c.Method.code())
		pieces = append(pieces, fmt.Sprintf("%d+%d", c.PreviousTRsToRemove, c.SubsequentTRsToRemove))

		// Sort descending by target name so FD precedes DVARS regardless of
		// configuration order.
		sorted := append([]CensorThreshold(nil), c.Thresholds...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Target.Name() > sorted[j].Target.Name()
		})
		for _, ct := range sorted {
			pieces = append(pieces, ct.Target.code()+thresholdPiece(ct.Threshold, "%.2g"))
		}

	default:
		return "", false
	}

	return joinPieces(pieces), true
}

// resolutionPiece renders the extraction resolution, with an E appended when
// the mask is eroded. A functional-grid extraction has no resolution piece.
func resolutionPiece(res *Resolution, eroded bool) string {
	if res == nil || res.Functional {
		return ""
	}
	piece := fmt.Sprintf("%.2f", res.Millimeters)
	if eroded {
		piece += "E"
	}
	return piece
}

// summaryPiece renders a summary method code; PC carries its component count.
func summaryPiece(s kernel.Summary) string {
	switch s.Method {
	case kernel.SummaryMean:
		return "M"
	case kernel.SummaryNormMean:
		return "NM"
	case kernel.SummaryDetrendMean:
		return "DM"
	case kernel.SummaryDetrendNormMean:
		return "DNM"
	case kernel.SummaryPC:
		return fmt.Sprintf("PC%d", s.Components)
	}
	return ""
}

// thresholdPiece renders a threshold: the verbatim spelling when it was
// configured as a string, otherwise the numeric value in the given format.
func thresholdPiece(t kernel.Threshold, numericFormat string) string {
	if t.Raw != "" {
		return t.Raw
	}
	return fmt.Sprintf(numericFormat, t.Value)
}

// joinPieces joins non-empty pieces with '-'.
func joinPieces(pieces []string) string {
	kept := pieces[:0]
	for _, p := range pieces {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "-")
}
