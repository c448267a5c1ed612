package response

// 对外固定的错误文案
const (
	MsgUnauthorized = "Unauthorized. Login required."
	MsgInternal     = "Internal server error"
)
