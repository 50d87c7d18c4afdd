package service

import "errors"

var (
	// ErrQuotaExceeded is returned when the daily catalog call budget is
	// spent. Callers must not fall back to the cache on this error.
	ErrQuotaExceeded = errors.New("daily catalog quota exceeded")

	// ErrProviderUnavailable is returned by the disabled LLM backend and by
	// backends that failed to initialize.
	ErrProviderUnavailable = errors.New("llm provider unavailable")
)
