package helpers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexBool is a bool that also accepts the textual and numeric truthy/falsy
// forms browsers and form libraries produce: "true"/"1"/"yes"/"on" and their
// false counterparts, case-insensitive, plus JSON numbers 0 and 1.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*b = false
		return nil
	case bool:
		*b = FlexBool(t)
		return nil
	case float64:
		if t == 0 || t == 1 {
			*b = t == 1
			return nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			*b = true
			return nil
		case "false", "0", "no", "off", "":
			*b = false
			return nil
		}
	}
	return fmt.Errorf("cannot interpret %s as boolean", data)
}

// FlexInt is an int that also accepts numeric strings. Fractional
// values are rejected, not truncated.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*i = 0
		return nil
	case float64:
		if t != math.Trunc(t) {
			return fmt.Errorf("cannot interpret %s as integer", data)
		}
		*i = FlexInt(t)
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			*i = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("cannot interpret %q as integer", t)
		}
		*i = FlexInt(n)
		return nil
	}
	return fmt.Errorf("cannot interpret %s as integer", data)
}
