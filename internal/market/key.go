package market

import (
	"strconv"
	"strings"
)

// Subscription keys use '|' as separator since asset names themselves
// contain underscores (EURUSD_otc).
func subKey(asset string, timeframe int) string {
	return asset + "|" + strconv.Itoa(timeframe)
}

func splitKey(key string) (asset string, timeframe int) {
	i := strings.LastIndexByte(key, '|')
	if i < 0 {
		return key, 0
	}
	tf, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return key[:i], 0
	}
	return key[:i], tf
}
