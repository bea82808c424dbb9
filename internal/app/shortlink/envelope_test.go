package shortlink

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateInput_TTLForms(t *testing.T) {
	cases := []struct {
		body string
		want *int64
	}{
		{`{"url":"u","ttl":3600}`, ttl(3600)},
		{`{"url":"u","ttl":"3600"}`, ttl(3600)},
		{`{"url":"u","ttl":" 60 "}`, ttl(60)},
		{`{"url":"u","ttl":null}`, nil},
		{`{"url":"u","ttl":""}`, nil},
		{`{"url":"u"}`, nil},
	}
	for _, tc := range cases {
		var in AllocateInput
		require.NoError(t, json.Unmarshal([]byte(tc.body), &in), tc.body)
		assert.Equal(t, tc.want, in.Request().TTLSeconds, tc.body)
	}
}

func TestAllocateInput_RejectsBadTTL(t *testing.T) {
	for _, body := range []string{`{"ttl":"soon"}`, `{"ttl":1.5}`, `{"ttl":true}`} {
		var in AllocateInput
		assert.Error(t, json.Unmarshal([]byte(body), &in), body)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	env := SuccessEnvelope(&Result{
		Code:        "promo",
		ShortURL:    "https://sho.rt/promo",
		OriginalURL: "https://example.com",
		ExpiresAt:   "2124-05-01T12:00:00+00:00",
	})

	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Ok",
		"data": {
			"code": "promo",
			"shortenedURL": "https://sho.rt/promo",
			"originalURL": "https://example.com",
			"expiresAt": "2124-05-01T12:00:00+00:00"
		}
	}`, string(b))
}

func TestFailureEnvelope(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{newError(KindMissingRequiredField, nil, "url is required"), 400},
		{newError(KindInvalidField, ErrTTLOutOfRange, "ttl out of range"), 400},
		{newError(KindAliasAlreadyInUse, ErrCodeTaken, "alias taken"), 409},
		{newError(KindCodeGenerationExhausted, nil, "exhausted"), 503},
		{StoreError(errors.New("boom")), 500},
		{errors.New("foreign"), 500},
	}
	for _, tc := range cases {
		env, status := FailureEnvelope(tc.err)
		assert.False(t, env.Success)
		assert.Nil(t, env.Data)
		assert.Equal(t, tc.err.Error(), env.Message)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}
