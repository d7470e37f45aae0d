package classifier

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/emotion"
)

// Random picks a uniformly random emotion after Delay. It stands in for a
// real model when none is configured.
type Random struct {
	Delay time.Duration
	// Pick overrides the random choice; tests use it to fix the answer.
	Pick func(n int) int
}

// Classify implements capture.PhotoClassifier.
func (r Random) Classify(ctx context.Context, _ []byte) (string, error) {
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	pick := r.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return emotion.All[pick(len(emotion.All))].String(), nil
}

var _ capture.PhotoClassifier = Random{}
