package cron

import (
	"context"

	"github.com/robfig/cron"

	"stake-ledger/logger"
)

type Handler func(ctx context.Context) error

type ErrHandler func(name string, err error)

func DefaultErrHandler(name string, err error) {
	if err != nil {
		logger.Logger.Errorf("run task: %s err: %v", name, err)
	}
}

type task struct {
	name       string
	spec       string
	handler    Handler
	errHandler ErrHandler
}

type Cron struct {
	ctx   context.Context
	cron  *cron.Cron
	tasks []task
}

// NewCron creates a scheduler whose handlers receive ctx.
func NewCron(ctx context.Context) *Cron {
	return &Cron{
		ctx:   ctx,
		cron:  cron.New(),
		tasks: make([]task, 0),
	}
}

// Register schedules handler on spec (seconds field first). The first
// errHandler, if any, replaces DefaultErrHandler.
func (c *Cron) Register(name, spec string, handler Handler, errHandlers ...ErrHandler) error {
	errHandler := DefaultErrHandler
	if len(errHandlers) > 0 {
		errHandler = errHandlers[0]
	}
	err := c.cron.AddFunc(spec, func() {
		logger.Logger.Infof("[cron] run task: %s", name)
		if err := handler(c.ctx); err != nil {
			errHandler(name, err)
		}
		logger.Logger.Infof("[cron] run task end: %s", name)
	})
	if err != nil {
		logger.Logger.Errorf("[cron] job.AddFunc err, name: %s, err: %v", name, err)
		return err
	}
	c.tasks = append(c.tasks, task{
		name:       name,
		spec:       spec,
		handler:    handler,
		errHandler: errHandler,
	})
	return nil
}

// Run starts every registered task and blocks until the context given to
// NewCron is done.
func (c *Cron) Run() {
	c.cron.Start()
	defer c.Stop()
	<-c.ctx.Done()
}

func (c *Cron) Stop() {
	c.cron.Stop()
}

func (c *Cron) Len() int {
	return len(c.tasks)
}
