package kpi

import (
	"math"
	"strconv"
)

// Round2 rounds x to 2 decimal places, half to even on the exact binary value.
// 2.675 is stored as 2.67499999... so it rounds down; 0.375 is exact and goes to 0.38.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return v
}

// pairwiseBlock is the block size below which partial sums are unrolled 8 ways
const pairwiseBlock = 128

// Sum adds values with pairwise summation: the first element seeds the
// accumulator and the rest are summed in blocks of eight partial sums.
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[0] + pairwiseSum(values[1:])
}

// Mean is Sum divided by the element count; 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

func pairwiseSum(a []float64) float64 {
	n := len(a)
	switch {
	case n < 8:
		res := 0.0
		for _, v := range a {
			res += v
		}
		return res
	case n <= pairwiseBlock:
		var r [8]float64
		copy(r[:], a[:8])
		i := 8
		for ; i < n-(n%8); i += 8 {
			for j := 0; j < 8; j++ {
				r[j] += a[i+j]
			}
		}
		res := ((r[0] + r[1]) + (r[2] + r[3])) + ((r[4] + r[5]) + (r[6] + r[7]))
		for ; i < n; i++ {
			res += a[i]
		}
		return res
	default:
		n2 := n / 2
		n2 -= n2 % 8
		return pairwiseSum(a[:n2]) + pairwiseSum(a[n2:])
	}
}

// percentage returns count/total expressed on a 0-100 scale, rounded
func percentage(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return Round2(float64(count) / float64(total) * 100)
}
