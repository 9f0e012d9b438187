package services

import "errors"

// Dashboard service errors
var (
	ErrRegionNotFound = errors.New("region not found")
	ErrNoChartData    = errors.New("no chart data available")
)
