package kvdb

import (
	"context"

	"go.uber.org/fx"
)

// Params kvdb 模块依赖参数
type Params struct {
	fx.In

	Opts Options
}

// Result kvdb 模块提供的结果
type Result struct {
	fx.Out

	DB *Database
}

// Module 返回 kvdb Fx 模块
//
// 提供:
//   - *Database: 存储句柄
//
// 生命周期:
//   - OnStop: 刷盘并关闭存储
func Module() fx.Option {
	return fx.Module("kvdb",
		fx.Provide(
			ProvideDatabase,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideDatabase 根据配置打开存储
func ProvideDatabase(p Params) (Result, error) {
	db, err := Open(p.Opts)
	if err != nil {
		return Result{}, err
	}

	return Result{DB: db}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, db *Database) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("正在关闭存储")
			if err := db.Close(); err != nil {
				logger.Warn("存储关闭失败", "error", err)
				return err
			}
			logger.Info("存储已关闭")
			return nil
		},
	})
}
