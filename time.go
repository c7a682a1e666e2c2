package regionvar

import (
	"fmt"
	"time"
)

// Time facilitates time scanning from the fill_log table, where timestamps
// are stored as unixtime but may come back from the driver as text. Derived
// from https://github.com/mattn/go-sqlite3/issues/190#issuecomment-343341834
type Time time.Time

func (t *Time) Scan(v interface{}) error {
	switch which := v.(type) {
	case int64:
		vt := time.Unix(which, 0)
		*t = Time(vt)
		return nil
	case int:
		vt := time.Unix(int64(which), 0)
		*t = Time(vt)
		return nil
	case []byte:
		vt, err := time.Parse("2006-01-02 15:04:05", string(which))
		if err != nil {
			return err
		}
		*t = Time(vt)
		return nil
	}

	return fmt.Errorf("No appropriate type could be found to decode %v", v)
}
