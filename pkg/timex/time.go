// Package timex wraps time.Time with a stable JSON and database representation
// Package timex 封装 time.Time，提供稳定的 JSON 与数据库表示
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const layout = "2006-01-02 15:04:05"

// Time is a time.Time that serializes as "2006-01-02 15:04:05"
// Time 是以 "2006-01-02 15:04:05" 序列化的 time.Time
type Time time.Time

// Now returns the current time as a Time
// Now 以 Time 类型返回当前时间
func Now() Time {
	return Time(time.Now())
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) String() string {
	return time.Time(t).Format(layout)
}

// MarshalJSON implements json.Marshaler
func (t Time) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*t = Time(time.Time{})
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+layout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer so gorm can persist the datetime column
// Value 实现 driver.Valuer，便于 gorm 写入 datetime 列
func (t Time) Value() (driver.Value, error) {
	if time.Time(t).IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
// Scan 实现 sql.Scanner
func (t *Time) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Time(time.Time{})
		return nil
	case time.Time:
		*t = Time(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("timex: cannot scan type %T into timex.Time", value)
	}
}

// scanString parses the formats sqlite drivers are known to store
// scanString 解析 sqlite 驱动可能存储的时间格式
func (t *Time) scanString(s string) error {
	for _, l := range []string{
		layout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
	} {
		if parsed, err := time.ParseInLocation(l, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q into timex.Time", s)
}
