package gee

import (
	"encoding/json"
	"errors"
	"io"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ShouldBindJSON decodes exactly one JSON value into dst and rejects unknown fields.
func (c *Context) ShouldBindJSON(dst any) error {
	decoder := json.NewDecoder(io.LimitReader(c.Req.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON value")
	}
	return nil
}
