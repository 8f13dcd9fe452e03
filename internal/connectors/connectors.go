// Package connectors defines the lifecycle contract for chat transports.
package connectors

import "context"

type Connector interface {
	Name() string
	Start(ctx context.Context) error
}
