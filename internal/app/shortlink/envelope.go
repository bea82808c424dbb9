package shortlink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Seconds accepts a JSON number, a numeric string, or null.
type Seconds struct {
	Value *int64
}

func (s *Seconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		s.Value = nil
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			s.Value = nil
			return nil
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return fmt.Errorf("ttl: %q is not an integer number of seconds", str)
		}
		s.Value = &n
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ttl: %s is not an integer number of seconds", b)
	}
	s.Value = &n
	return nil
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	if s.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*s.Value, 10)), nil
}

// AllocateInput is the wire form of an allocation request, shared by the HTTP
// API and the Lambda handler.
type AllocateInput struct {
	URL   string  `json:"url"`
	Alias string  `json:"alias,omitempty"`
	TTL   Seconds `json:"ttl"`
}

func (in AllocateInput) Request() Request {
	return Request{URL: in.URL, Alias: in.Alias, TTLSeconds: in.TTL.Value}
}

type EnvelopeData struct {
	Code         string `json:"code"`
	ShortenedURL string `json:"shortenedURL"`
	OriginalURL  string `json:"originalURL"`
	ExpiresAt    string `json:"expiresAt"`
}

// Envelope is the allocation reply. Data is nil on failure.
type Envelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *EnvelopeData `json:"data,omitempty"`
}

func SuccessEnvelope(res *Result) Envelope {
	return Envelope{
		Success: true,
		Message: "Ok",
		Data: &EnvelopeData{
			Code:         res.Code,
			ShortenedURL: res.ShortURL,
			OriginalURL:  res.OriginalURL,
			ExpiresAt:    res.ExpiresAt,
		},
	}
}

// FailureEnvelope renders err with the status its kind maps to.
func FailureEnvelope(err error) (Envelope, int) {
	return Envelope{Success: false, Message: err.Error()}, KindOf(err).Status()
}
