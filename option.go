package fulfillment

import (
	"github.com/viant/afs/storage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/fulfillment/policy"
	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/activity"
	"github.com/viant/fulfillment/service/approval"
	"github.com/viant/fulfillment/service/dao"
	"github.com/viant/fulfillment/service/event"
	"github.com/viant/fulfillment/tracing"
)

// Option customizes the fulfillment service.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithActivityService sets the activity gateway; it is still wrapped by the
// retrying invoker.
func WithActivityService(service activity.Service) Option {
	return func(s *Service) { s.activities = service }
}

// WithApprovalService sets the approval inbox service.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvalService = svc }
}

// WithEventService sets the observability event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) { s.eventService = service }
}

// WithApproval sets the approval policy applied to all orders.
func WithApproval(approval *policy.Approval) Option {
	return func(s *Service) { s.approval = approval }
}

// WithProcessDAO sets the process snapshot DAO.
func WithProcessDAO(dao dao.Service[string, execution.Process]) Option {
	return func(s *Service) { s.runtime.processDAO = dao }
}

// WithArchiveDAO sets an additional DAO that receives terminal process
// snapshots, typically the file-system DAO for durable audit copies.
func WithArchiveDAO(dao dao.Service[string, execution.Process]) Option {
	return func(s *Service) { s.runtime.archiveDAO = dao }
}

// WithOrderBaseURL sets the base URL resolved against relative order
// document locations.
func WithOrderBaseURL(url string) Option {
	return func(s *Service) { s.orderBaseURL = url }
}

// WithOrderFsOptions sets file system options passed to the order loader.
func WithOrderFsOptions(options ...storage.Option) Option {
	return func(s *Service) { s.orderFsOptions = options }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times - the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times - the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
