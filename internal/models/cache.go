package models

// CacheStats reports prediction cache occupancy and effectiveness.
type CacheStats struct {
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
}
