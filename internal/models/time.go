package models

import (
	"fmt"
	"time"
)

// ISOLayout はレスポンスの日時形式です (UTC、ミリ秒まで)。
const ISOLayout = "2006-01-02T15:04:05.000Z"

// FormatTime は t を UTC の ISO-8601 文字列にします。
func FormatTime(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Now はストレージに保存する現在時刻です。保存先の精度に合わせてミリ秒で切り捨てます。
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDueDate は期限の文字列を解釈します。タイムゾーンのない値は UTC とみなします。
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}
