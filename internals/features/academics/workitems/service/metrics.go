package service

import "portalku_backend/internals/helpers/metrics"

func submissionOutcome(kind, errKind string) {
	metrics.Submissions.WithLabelValues(kind, metrics.Outcome(errKind)).Inc()
}
