package cache

import (
	"fmt"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Key builds a cache key from an operation name and its ordered arguments.
// Arguments are quoted so separators inside them cannot collide.
func Key(operation string, args ...any) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(operation)
	for _, arg := range args {
		_ = buf.WriteByte('|')
		_, _ = buf.WriteString(strconv.Quote(fmt.Sprint(arg)))
	}
	return buf.String()
}
