package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInteger(t *testing.T) {
	testCases := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{`10`, 10, true},
		{`-5`, -5, true},
		{`0`, 0, true},
		{`3.9`, 3, true},
		{`-3.9`, -3, true},
		{`1e3`, 1000, true},
		{`"42"`, 42, true},
		{`"  -7 "`, -7, true},
		{`"2.5"`, 2, true},
		{`"+8"`, 8, true},
		{`"1e3"`, 0, false},
		{`"12abc"`, 0, false},
		{`"0x10"`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, false},
		{`"NaN"`, 0, false},
		{`"Infinity"`, 0, false},
		{`true`, 0, false},
		{`null`, 0, false},
		{`{}`, 0, false},
		{`[1]`, 0, false},
		{`1e300`, 0, false},
	}

	for _, tt := range testCases {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseInteger(json.RawMessage(tt.raw))
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func bindBody(t *testing.T, body string) requestFields {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return bindFields(c)
}

func TestBindFields(t *testing.T) {
	t.Run("object members", func(t *testing.T) {
		fields := bindBody(t, `{"email":"a@b.co","name":null,"coins":"5","spend_history":[{"x":1}]}`)

		email, ok := fields.str("email")
		assert.True(t, ok)
		assert.Equal(t, "a@b.co", email)

		assert.True(t, fields.has("name"))
		_, ok = fields.str("name")
		assert.False(t, ok, "null is not a string")

		for _, body := range []string{`{"name":5}`, `{"name":true}`, `{"name":["a"]}`, `{"name":{}}`} {
			_, ok := bindBody(t, body).str("name")
			assert.False(t, ok, body)
		}

		coins, ok := fields.integer("coins")
		assert.True(t, ok)
		assert.Equal(t, int64(5), coins)

		history, ok := fields.spendHistory("spend_history")
		require.True(t, ok)
		assert.Len(t, history, 1)

		assert.False(t, fields.has("coinsDelta"))
	})

	malformed := []string{``, `{`, `not json`, `[1,2]`, `"text"`, `null`}
	for _, body := range malformed {
		t.Run("malformed body "+body, func(t *testing.T) {
			fields := bindBody(t, body)
			assert.NotNil(t, fields)
			assert.Empty(t, fields)
		})
	}

	t.Run("spend history must be an array", func(t *testing.T) {
		for _, body := range []string{`{"spend_history":null}`, `{"spend_history":{}}`, `{"spend_history":"[]"}`} {
			fields := bindBody(t, body)
			_, ok := fields.spendHistory("spend_history")
			assert.False(t, ok, body)
		}

		fields := bindBody(t, `{"spend_history":[]}`)
		history, ok := fields.spendHistory("spend_history")
		assert.True(t, ok)
		assert.NotNil(t, history)
		assert.Empty(t, history)
	})
}
