package clock

import "time"

// NowFunc подменяется в тестах
var NowFunc = time.Now

func Now() time.Time {
	return NowFunc()
}
