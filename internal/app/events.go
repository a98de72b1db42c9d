package app

import (
	"github.com/scrumify/server/internal/shared/events"
	"github.com/scrumify/server/internal/shared/metrics"
)

// metricsHandler feeds domain events into prometheus counters.
type metricsHandler struct {
	metrics *metrics.Metrics
}

func newMetricsHandler(m *metrics.Metrics) *metricsHandler {
	return &metricsHandler{metrics: m}
}

// Handles returns the event types this handler subscribes to.
func (h *metricsHandler) Handles() []string {
	return []string{
		events.InvitationSentType,
		events.InvitationAcceptedType,
		events.InvitationDeclinedType,
		events.ProjectDeletedType,
		events.TaskMovedType,
		events.BacklogPromotedType,
	}
}

// Handle updates the counter matching the event type.
func (h *metricsHandler) Handle(event events.Event) error {
	switch event.EventType() {
	case events.InvitationSentType:
		h.metrics.InvitationsTotal.WithLabelValues("sent").Inc()
		h.metrics.EmailsTotal.WithLabelValues("sent").Inc()
	case events.InvitationAcceptedType:
		h.metrics.InvitationsTotal.WithLabelValues("accepted").Inc()
	case events.InvitationDeclinedType:
		h.metrics.InvitationsTotal.WithLabelValues("declined").Inc()
	case events.ProjectDeletedType:
		h.metrics.ProjectsDeletedTotal.Inc()
	case events.TaskMovedType:
		h.metrics.TasksMovedTotal.Inc()
	case events.BacklogPromotedType:
		h.metrics.BacklogPromotedTotal.Inc()
	}
	return nil
}
