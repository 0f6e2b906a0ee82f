package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron 定时任务调度器封装
// 任务 panic 由 cron.Recover 链捕获，不会拖垮进程
type Cron struct {
	c *cron.Cron
}

// New 创建调度器（UTC 时区）
func New() *Cron {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	return &Cron{c: c}
}

// AddEvery 按固定间隔注册任务
func (cr *Cron) AddEvery(interval time.Duration, fn func(ctx context.Context)) (cron.EntryID, error) {
	spec := fmt.Sprintf("@every %s", interval)
	return cr.c.AddFunc(spec, func() { fn(context.Background()) })
}

// Start 启动调度
func (cr *Cron) Start() { cr.c.Start() }

// Stop 停止调度并等待运行中的任务结束
func (cr *Cron) Stop() {
	ctx := cr.c.Stop()
	<-ctx.Done()
}
