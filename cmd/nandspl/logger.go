package main

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// glogLogger adapts glog to spl.Logger. Debug messages need -v=2.
type glogLogger struct{}

func (glogLogger) Debug(msg string, kv ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, formatKV(msg, kv))
	}
}

func (glogLogger) Info(msg string, kv ...interface{}) {
	glog.InfoDepth(1, formatKV(msg, kv))
}

func (glogLogger) Error(msg string, kv ...interface{}) {
	glog.ErrorDepth(1, formatKV(msg, kv))
}

// formatKV renders key-value pairs as "msg key=value key=value".
func formatKV(msg string, kv []interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	return b.String()
}
