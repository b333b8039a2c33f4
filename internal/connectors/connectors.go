package connectors

import "context"

// Connector delivers inbound platform messages to the gateway and carries
// replies back. Session and auth lifecycle stay inside the connector.
type Connector interface {
	Name() string
	Start(ctx context.Context) error
}
