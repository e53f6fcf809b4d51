package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskrealm/server/catalog"
	"taskrealm/server/events"
	"taskrealm/server/metrics"
	"taskrealm/server/objectives"
	"taskrealm/server/persistence"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store     persistence.Storage
	Catalog   *catalog.Catalog
	Engine    *objectives.Engine
	Locks     OwnerLocker
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Locks == nil {
		d.Locks = NewLocalOwnerLocks()
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Catalog == nil {
		d.Catalog = catalog.New()
	}
	return d
}

// publish sends ev and only logs a failure; progression never rolls back
// because the notification sink is down.
func publish(ctx context.Context, p events.Publisher, logger *zap.Logger, ev events.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", ev.Type), zap.String("ownerID", ev.OwnerID), zap.Error(err))
	}
}
