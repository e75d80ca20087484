package txscript

// logClosure 让昂贵的日志内容只在日志级别启用时才计算。
type logClosure func() string

// String 调用闭包生成日志内容。
func (c logClosure) String() string {
	return c()
}

func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}
