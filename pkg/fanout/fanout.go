package fanout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrInvalidLimit 并发上限非法（非空输入时 limit 必须 >= 1）
var ErrInvalidLimit = errors.New("fanout: limit must be at least 1")

// MapLimit 以固定并发上限对 items 逐项执行 fn，结果按输入下标原位返回。
//
// 启动 min(limit, len(items)) 个 worker，每个 worker 通过共享计数器
// 认领下一个未处理的下标并把结果写入 out[idx]，因此无论各项完成顺序
// 如何，out[i] 始终对应 fn(items[i])。
//
// 任意一项失败即快速失败：返回第一个错误，未认领的下标不再执行，
// 已在途的兄弟调用不会被取消，会自行跑完。
func MapLimit[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	workers := limit
	if workers > len(items) {
		workers = len(items)
	}

	out := make([]R, len(items))

	var (
		next     atomic.Int64 // 下一个待认领的下标
		stopped  atomic.Bool  // 出错后停止认领新任务
		errOnce  sync.Once
		firstErr error
		wg       sync.WaitGroup
	)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				if stopped.Load() {
					return
				}
				idx := next.Add(1) - 1
				if idx >= int64(len(items)) {
					return
				}
				res, err := fn(ctx, items[idx])
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					stopped.Store(true)
					return
				}
				out[idx] = res
			}
		}()
	}
	wg.Wait()

	if stopped.Load() {
		return nil, firstErr
	}
	return out, nil
}
