package handler

type ContextKey string

var (
	RequestIDCtxKey    ContextKey = "requestID"
	RoleCtxKey         ContextKey = "role"
	SubCtxKey          ContextKey = "sub"
	MyInfoCtx          ContextKey = "myInfo"
	UserInfoCtx        ContextKey = "userInfo"
	ServiceTypeCtx     ContextKey = "serviceType"
	ServiceTemplateCtx ContextKey = "serviceTemplate"
	HolidayCtx         ContextKey = "holiday"
	ServiceCtx         ContextKey = "service"
)
