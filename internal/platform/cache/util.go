package cache

import (
	"time"
)

// MarketLocation は上海・深圳市場のタイムゾーンです。
const MarketLocation = "Asia/Shanghai"

// RefreshHour は日足データが確定したとみなす現地時刻（時）です。引け後の15時台を避けて16時とします。
const RefreshHour = 16

// TimeUntilNextRefresh は now から次の RefreshHour（市場時間）までの期間を返します。
// キャッシュTTLとして使うと、日足の確定タイミングでエントリが失効します。
func TimeUntilNextRefresh(now time.Time) time.Duration {
	loc, err := time.LoadLocation(MarketLocation)
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	local := now.In(loc)

	next := time.Date(local.Year(), local.Month(), local.Day(), RefreshHour, 0, 0, 0, loc)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}
