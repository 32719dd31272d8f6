package storage

import (
	"HRCore/storage/database"
	"HRCore/storage/mq"
	"HRCore/storage/redis"
)

// Component 可单独初始化的存储组件
type Component string

const (
	Database Component = "database"
	Redis    Component = "redis"
	MQ       Component = "rabbitmq"
)

var initializers = []struct {
	component Component
	fn        func() error
}{
	{Database, database.Init},
	{Redis, redis.Init},
	{MQ, mq.Init},
}

// Init 按 Database -> Redis -> MQ 顺序初始化；不传参数时全部初始化。
// 命令行工具只需要部分组件
func Init(components ...Component) error {
	want := make(map[Component]bool, len(components))
	for _, c := range components {
		want[c] = true
	}

	for _, i := range initializers {
		if len(want) > 0 && !want[i.component] {
			continue
		}
		if err := i.fn(); err != nil {
			return err
		}
	}
	return nil
}
