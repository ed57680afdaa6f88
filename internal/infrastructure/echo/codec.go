package echo

import (
	"math"
	"strconv"
	"strings"

	"pricetracker/internal/application/port"
)

// Wire format: one text frame per update, "<symbol>;<price>" with the
// price in dot-radix decimal form. The transport delivers discrete
// messages, so no extra framing is needed.

// Encode renders an outbound update as wire text.
func Encode(u port.Update) string {
	return u.Symbol + ";" + strconv.FormatFloat(u.Price, 'f', -1, 64)
}

// Decode parses inbound wire text. It returns false for anything that
// does not split on the first ';' into two non-empty parts with a
// finite numeric price; malformed frames are dropped, never fatal.
func Decode(text string) (port.Update, bool) {
	symbol, raw, found := strings.Cut(text, ";")
	if !found || symbol == "" || raw == "" {
		return port.Update{}, false
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return port.Update{}, false
	}
	return port.Update{Symbol: symbol, Price: price}, true
}
