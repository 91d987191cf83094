package domain

import "errors"

var (
	// ErrNotFoundInRegion is returned when an item is not listed in the
	// requested region. Expected, never escalated.
	ErrNotFoundInRegion = errors.New("not listed in region")

	// ErrMalformedPayload is returned when an upstream payload lacks
	// required fields (no title, no price currency)
	ErrMalformedPayload = errors.New("malformed provider payload")

	// ErrResolutionConflict is returned when a concurrent writer won the
	// race to create a product/title pair
	ErrResolutionConflict = errors.New("resolution conflict")

	// ErrResolutionFailed is returned when resolution retries are exhausted
	ErrResolutionFailed = errors.New("title resolution failed")

	// ErrNoPriceData is returned when a provider reported no usable price
	ErrNoPriceData = errors.New("no price data")

	// ErrRateUnavailable is returned when no conversion rate is known for
	// a currency, even as a stale fallback
	ErrRateUnavailable = errors.New("conversion rate unavailable")
)
