package types

// Version is the application version. Overridden at build time with
// -ldflags "-X github.com/m-mizutani/ci-preview/pkg/domain/types.Version=..."
var Version = "dev"

// ServiceName is reported by the health endpoint and used as the Sentry release prefix.
const ServiceName = "ci-preview"
