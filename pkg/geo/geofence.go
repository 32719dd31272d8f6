// Package geo 地理围栏判定
package geo

import "math"

// EarthRadiusM 地球平均半径（米）
const EarthRadiusM = 6371000.0

// Fence 圆形围栏
type Fence struct {
	Latitude  float64
	Longitude float64
	RadiusM   int
}

// Haversine 两点间大圆距离（米，未取整）
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// 浮点误差可能让 a 略大于 1
	a = math.Min(1, math.Max(0, a))

	return EarthRadiusM * 2 * math.Asin(math.Sqrt(a))
}

// DistanceM 取整到米
func DistanceM(lat1, lon1, lat2, lon2 float64) int {
	return int(math.Round(Haversine(lat1, lon1, lat2, lon2)))
}

// Evaluate 返回 (距离, 是否在围栏内)。
// 围栏或任一坐标缺失时返回 (nil, false)；半径 <= 0 永远不在围栏内。
// 坐标范围在请求校验阶段处理，这里不再检查。
func Evaluate(lat, lon *float64, fence *Fence) (*int, bool) {
	if fence == nil || lat == nil || lon == nil {
		return nil, false
	}

	d := DistanceM(*lat, *lon, fence.Latitude, fence.Longitude)
	inside := fence.RadiusM > 0 && d <= fence.RadiusM
	return &d, inside
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
