package artifact

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const listSep = ";"

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func fmtOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

func fmtInt(v int) string { return strconv.Itoa(v) }

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtList(ids []string) string { return strings.Join(ids, listSep) }

// decoder collects the first cell error so codecs can decode a whole row
// before checking.
type decoder struct {
	row Row
	err error
}

func (d *decoder) str(name string) string { return d.row.Get(name) }

func (d *decoder) float(name string) float64 {
	v := d.optFloat(name)
	if v == nil {
		return 0
	}
	return *v
}

func (d *decoder) optFloat(name string) *float64 {
	s := strings.TrimSpace(d.row.Get(name))
	if s == "" || d.err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		d.fail(name, s)
		return nil
	}
	return &v
}

func (d *decoder) count(name string) int {
	s := strings.TrimSpace(d.row.Get(name))
	if s == "" || d.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		d.fail(name, s)
		return 0
	}
	return v
}

func (d *decoder) flag(name string) bool {
	s := strings.TrimSpace(d.row.Get(name))
	if s == "" || d.err != nil {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		d.fail(name, s)
		return false
	}
	return v
}

func (d *decoder) when(name, layout string) time.Time {
	s := strings.TrimSpace(d.row.Get(name))
	if s == "" || d.err != nil {
		return time.Time{}
	}
	v, err := time.Parse(layout, s)
	if err != nil {
		d.fail(name, s)
		return time.Time{}
	}
	return v.UTC()
}

func (d *decoder) list(name string) []string {
	s := d.row.Get(name)
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}

func (d *decoder) fail(name, value string) {
	if d.err == nil {
		d.err = fmt.Errorf("column %s: cannot parse %q", name, value)
	}
}
