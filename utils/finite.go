package utils

import "math"

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FinitePoint は座標がすべて有限値かどうかを返します。
func FinitePoint(x, y float64) bool {
	return IsFinite(x) && IsFinite(y)
}
