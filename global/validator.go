package global

import (
	"github.com/go-playground/validator/v10"
)

// Validator is the shared validator instance, also used by the websocket layer
// which has no gin binding of its own
// Validator 为共享的验证器实例，供自身没有 gin 绑定的 websocket 层使用
var Validator *validator.Validate

func init() {
	Validator = validator.New()
}
