package gamma

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Event is a Gamma /events row. Only the fields the bot cares about are
// decoded; everything else in the payload is ignored.
type Event struct {
	ID         FlexString `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	CreatedAt  FlexTime   `json:"createdAt"`
	EndDate    FlexTime   `json:"endDate"`
	Volume     FlexFloat  `json:"volume"`
	Liquidity  FlexFloat  `json:"liquidity"`
	Image      string     `json:"image"`
	CoverImage string     `json:"coverImage"`
	Icon       string     `json:"icon"`
	Series     []Series   `json:"series"`
}

// Series is a category tag attached to an event (e.g. a sports league).
type Series struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// ImageURL returns the first image-like field carrying an http(s) URL, or ""
// when the event has no usable image.
func (e Event) ImageURL() string {
	for _, u := range []string{e.Image, e.CoverImage, e.Icon} {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			return u
		}
	}
	return ""
}

// FlexString decodes a JSON string or a bare number token into a string.
// Gamma returns event ids as strings on /events but as numbers elsewhere.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*s = FlexString(raw)
		return nil
	}
	*s = FlexString(string(b))
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexFloat decodes a JSON number, a number-in-a-string, or null. Missing,
// empty and unparsable values all decode to zero rather than failing the
// whole events payload.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Value() float64 { return float64(f) }

// FlexTime decodes an RFC3339 timestamp (with or without fractional
// seconds). Absent, null or unparsable values decode to the zero time, so
// callers can treat IsZero as "no usable timestamp".
type FlexTime struct {
	t time.Time
}

func (ft *FlexTime) UnmarshalJSON(b []byte) error {
	ft.t = time.Time{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05-07", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			ft.t = t.UTC()
			return nil
		}
	}
	return nil
}

func (ft FlexTime) MarshalJSON() ([]byte, error) {
	if ft.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ft.t.Format(time.RFC3339))
}

func (ft FlexTime) Time() time.Time { return ft.t }
func (ft FlexTime) IsZero() bool    { return ft.t.IsZero() }
