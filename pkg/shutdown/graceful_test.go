package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunExecutesHooksInReverseOrder(t *testing.T) {
	var order []int
	hook := func(i int) Hook {
		return func(ctx context.Context) error {
			order = append(order, i)
			return nil
		}
	}

	err := Run(time.Second, hook(1), nil, hook(2), hook(3))
	assert.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestRunJoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	err := Run(time.Second,
		func(context.Context) error { return errA },
		func(context.Context) error { return errB },
	)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestWithSignalsCancelPropagates(t *testing.T) {
	ctx, cancel := WithSignals(context.Background())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
