package usecase

import (
	"context"

	"github.com/xavierca1/lead-system/internal/infra/queue"
)

type StageEventPublisher interface {
	PublishStageChanged(ctx context.Context, event queue.StageChangedEvent) error
}

// TransitionRecorder counts stage changes that were actually written.
type TransitionRecorder interface {
	RecordTransition(stage string)
}
