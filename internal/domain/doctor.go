package domain

// HealthStatus grades a single diagnostic check.
type HealthStatus string

const (
	HealthOK   HealthStatus = "ok"
	HealthWarn HealthStatus = "warn"
	HealthFail HealthStatus = "fail"
)

// HealthCheck is one line of `b doctor` output.
type HealthCheck struct {
	Name   string
	Status HealthStatus
	Detail string
}

// HealthReport aggregates diagnostics.
type HealthReport struct {
	Checks []HealthCheck
}

// Healthy reports whether no check failed.
func (r HealthReport) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == HealthFail {
			return false
		}
	}
	return true
}
