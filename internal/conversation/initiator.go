// Package conversation opens new hosted threads and records where they came from.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/petasbytes/support-bot/internal/provider"
)

// DefaultPlatform is recorded when the caller does not name one.
const DefaultPlatform = "Not Specified"

// ThreadRecorder keeps a local record of started threads.
type ThreadRecorder interface {
	RecordThread(ctx context.Context, threadID, platform string) error
}

type Initiator struct {
	API      provider.API
	Recorder ThreadRecorder // optional
}

// StartConversation creates a thread tagged with platform and returns its id.
func (i *Initiator) StartConversation(ctx context.Context, platform string) (string, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = DefaultPlatform
	}
	threadID, err := i.API.CreateThread(ctx, map[string]string{"platform": platform})
	if err != nil {
		return "", fmt.Errorf("start conversation: %w", err)
	}
	if i.Recorder != nil {
		if err := i.Recorder.RecordThread(ctx, threadID, platform); err != nil {
			return "", fmt.Errorf("record thread %s: %w", threadID, err)
		}
	}
	return threadID, nil
}
