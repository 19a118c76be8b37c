// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// CategoryCreateRequest 创建分类请求参数
type CategoryCreateRequest struct {
	Name  string `json:"name" form:"name" binding:"required,max=64"`
	Color string `json:"color" form:"color" binding:"omitempty,max=32"`
}

// CategoryUpdateRequest 更新分类名称与颜色的请求参数
type CategoryUpdateRequest struct {
	ID    int64  `json:"id" form:"id" binding:"required,gt=0"`
	Name  string `json:"name" form:"name" binding:"required,max=64"`
	Color string `json:"color" form:"color" binding:"omitempty,max=32"`
}

// CategoryReorderRequest 整组重排分类的请求参数
// orderedIds 必须是现有分类 ID 的一个完整排列
type CategoryReorderRequest struct {
	OrderedIDs []int64 `json:"orderedIds" form:"orderedIds" binding:"required,min=1,dive,gt=0"`
}
