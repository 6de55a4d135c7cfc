package apperr

// ErrorBody 是所有错误响应的格式
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func Body(err error) *ErrorBody {
	return &ErrorBody{
		Message: Message(err),
		Errors:  Fields(err),
	}
}
