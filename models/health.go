package models

// HealthStatus is reported by the health endpoint.
type HealthStatus string

const (
	HealthOK          HealthStatus = "ok"
	HealthUnavailable HealthStatus = "store_unavailable"
)
