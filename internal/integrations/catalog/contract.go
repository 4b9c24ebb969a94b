package catalog

type Logger interface {
	Error(format string, v ...interface{})
}
