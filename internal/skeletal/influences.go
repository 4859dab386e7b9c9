package skeletal

import (
	"cmp"
	"slices"

	"github.com/Faultbox/meshbuild/internal/diag"
)

// PackInfluences packs the raw influences of every point. Per point the
// bones outside the skeleton are dropped, then the rest are ordered by
// descending weight, capped at limit, normalized and quantized to 8 bits in
// consecutive slots. The quantization shortfall goes to the heaviest slot.
// Points without influences, or with only invalid ones, are bound to the
// root bone.
func PackInfluences(raw []Influence, numPoints, numBones, limit int, diags *diag.List) []Influences {
	limit = max(1, min(limit, MaxTotalInfluences))

	byPoint := make([][]Influence, numPoints)
	for _, inf := range raw {
		if int(inf.Point) < numPoints {
			byPoint[inf.Point] = append(byPoint[inf.Point], inf)
		}
	}

	packed := make([]Influences, numPoints)
	capped, outOfRange := 0, 0
	for p, infs := range byPoint {
		if len(infs) == 0 {
			diags.Warn(diag.CodeMissingInfluence, "Missing influence on vert %d. Weighting it to root.", p)
			packed[p].Weights[0] = 255
			continue
		}

		valid := infs[:0]
		for _, inf := range infs {
			if int(inf.Bone) < numBones {
				valid = append(valid, inf)
			} else {
				outOfRange++
			}
		}

		slices.SortStableFunc(valid, func(a, b Influence) int {
			return cmp.Compare(b.Weight, a.Weight)
		})
		if len(valid) > limit {
			capped++
			valid = valid[:limit]
		}

		var sum float32
		for _, inf := range valid {
			sum += inf.Weight
		}

		total := 0
		out := &packed[p]
		for i, inf := range valid {
			w := inf.Weight
			if sum > 0 {
				w = min(w/sum, 1)
			}
			out.Bones[i] = inf.Bone
			out.Weights[i] = uint8(w * 255)
			total += int(out.Weights[i])
		}
		out.Weights[0] += uint8(255 - total)
	}

	if capped > 0 {
		diags.Info(diag.CodeTooManyInfluences,
			"%d vertices have more than %d influences; the smallest were dropped", capped, limit)
	}
	if outOfRange > 0 {
		diags.Warn(diag.CodeInfluenceOutOfRange,
			"%d influences reference bones outside the %d-bone skeleton and were skipped", outOfRange, numBones)
	}
	return packed
}
