// Package services contains the business layer of the dashboard: summary
// metrics, region queries, chart rendering, and exports over the cached
// unemployment dataset, plus health reporting for the HTTP surface.
package services
