// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Note     NoteServiceConfig     // Note related config // 便签相关配置
	Trash    TrashServiceConfig    // Trash related config // 回收站相关配置
	Reminder ReminderServiceConfig // Reminder related config // 提醒相关配置
}

// NoteServiceConfig note service configuration
// NoteServiceConfig 便签服务配置
type NoteServiceConfig struct {
	DefaultColor    string        // Default background color for new notes // 新建便签的默认背景色
	DefaultPageSize int           // Default page size // 默认分页大小
	MaxPageSize     int           // Max page size // 最大分页大小
	SearchDebounce  time.Duration // Debounce interval for live search reloads // 即时搜索刷新防抖间隔
}

// TrashServiceConfig trash service configuration
// TrashServiceConfig 回收站服务配置
type TrashServiceConfig struct {
	RetentionTime time.Duration // How long trashed notes are kept before the sweep purges them, 0 disables the sweep // 回收站保留时长，0 表示不自动清理
}

// ReminderServiceConfig reminder service configuration
// ReminderServiceConfig 提醒服务配置
type ReminderServiceConfig struct {
	UpcomingWindow time.Duration // Optional upper time bound for the upcoming reminder list, 0 means unbounded // 即将到期列表的可选时间上界，0 表示不限制
}
