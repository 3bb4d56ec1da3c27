package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMapLimitPreservesOrder(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	// 偶数项故意慢，制造完成顺序与输入顺序交错
	out, err := MapLimit(context.Background(), items, 4, func(_ context.Context, v int) (string, error) {
		if v%2 == 0 {
			time.Sleep(time.Duration(v%7) * time.Millisecond)
		}
		return fmt.Sprintf("item-%d", v), nil
	})
	require.NoError(t, err)
	require.Len(t, out, len(items))
	for i, s := range out {
		require.Equal(t, fmt.Sprintf("item-%d", i), s)
	}
}

func TestMapLimitConcurrencyBound(t *testing.T) {
	const limit = 5
	var inflight, peak atomic.Int64

	items := make([]int, 40)
	_, err := MapLimit(context.Background(), items, limit, func(_ context.Context, _ int) (int, error) {
		cur := inflight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inflight.Add(-1)
		return 0, nil
	})
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int64(limit))
	require.Equal(t, int64(limit), peak.Load(), "worker 数量足够时应达到并发上限")
}

func TestMapLimitEmptyInput(t *testing.T) {
	called := false
	out, err := MapLimit(context.Background(), []int{}, 3, func(_ context.Context, _ int) (int, error) {
		called = true
		return 0, nil
	})
	require.NoError(t, err)
	require.Empty(t, out)
	require.False(t, called)

	// 空输入不校验 limit
	out, err = MapLimit(context.Background(), nil, 0, func(_ context.Context, _ int) (int, error) {
		return 0, nil
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestMapLimitInvalidLimit(t *testing.T) {
	_, err := MapLimit(context.Background(), []int{1, 2}, 0, func(_ context.Context, v int) (int, error) {
		return v, nil
	})
	require.ErrorIs(t, err, ErrInvalidLimit)

	_, err = MapLimit(context.Background(), []int{1}, -3, func(_ context.Context, v int) (int, error) {
		return v, nil
	})
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestMapLimitFailFast(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int64

	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	_, err := MapLimit(context.Background(), items, 2, func(_ context.Context, v int) (int, error) {
		calls.Add(1)
		if v == 3 {
			return 0, boom
		}
		time.Sleep(time.Millisecond)
		return v, nil
	})
	require.ErrorIs(t, err, boom)
	// 出错后不再认领新任务，远达不到全部 100 项
	require.Less(t, calls.Load(), int64(100))
}

func TestMapLimitLimitLargerThanItems(t *testing.T) {
	out, err := MapLimit(context.Background(), []int{10, 20, 30}, 100, func(_ context.Context, v int) (int, error) {
		return v * 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{20, 40, 60}, out)
}
