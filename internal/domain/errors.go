package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when no product id can be parsed and no
	// product URLs are discovered on a listing page
	ErrProductNotFound = errors.New("product not found")

	// ErrNoSellers is returned when neither the API nor the embedded page
	// source produced a single seller row
	ErrNoSellers = errors.New("no seller rows produced")

	// ErrAPIFailure is returned when the product-detail API request fails
	ErrAPIFailure = errors.New("product detail API request failed")

	// ErrPageFetchFailure is returned when the page source cannot be fetched
	ErrPageFetchFailure = errors.New("page source fetch failed")

	// ErrScrapeTimeout is returned when a scrape exceeds its overall deadline
	ErrScrapeTimeout = errors.New("scrape deadline exceeded")
)
