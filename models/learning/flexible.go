package learning

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// FlexibleInt accepts 6, 6.5, "6" and "6 weeks". Anything without a leading
// number decodes to 0.
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexibleInt(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = 0
		return nil
	}
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		n = 0
	}
	*f = FlexibleInt(n)
	return nil
}
