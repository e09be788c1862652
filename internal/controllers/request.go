package controllers

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-coins-api/internal/middleware"
	"github.com/franciscosanchezn/gin-coins-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// requestFields is a JSON object body whose members are decoded lazily,
// so an absent member can be told apart from one set to null or to the wrong type
type requestFields map[string]json.RawMessage

// bindFields reads the body as a JSON object. A missing or malformed body is an empty object
// and the field checks of each handler report what is missing.
func bindFields(c *gin.Context) requestFields {
	fields := requestFields{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		log.WithError(err).Debug("Ignoring unreadable request body")
		return requestFields{}
	}
	if fields == nil {
		return requestFields{}
	}
	return fields
}

// has reports whether the member is present, even when it is null
func (f requestFields) has(key string) bool {
	_, ok := f[key]
	return ok
}

// str returns the member when it is a JSON string
func (f requestFields) str(key string) (string, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}
	// null decodes into a string without error
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var value string
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return "", false
	}
	return value, true
}

// spendHistory returns the member when it is a JSON array
func (f requestFields) spendHistory(key string) (models.SpendHistory, bool) {
	raw, ok := f[key]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, false
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return models.SpendHistory(entries), true
}

// integer returns the member parsed by parseInteger
func (f requestFields) integer(key string) (int64, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}
	return parseInteger(raw)
}

// numericString is a plain decimal with optional sign and fraction; exponents are not accepted in strings
var numericString = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]*)?$`)

// parseInteger accepts a JSON number or a numeric JSON string and truncates it toward zero
func parseInteger(raw json.RawMessage) (int64, bool) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return 0, false
	}

	switch v := value.(type) {
	case json.Number:
		return truncateToInt(v.String())
	case string:
		s := strings.TrimSpace(v)
		if !numericString.MatchString(s) {
			return 0, false
		}
		return truncateToInt(s)
	default:
		return 0, false
	}
}

func truncateToInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// respondWithError renders err through the shared error middleware
func respondWithError(c *gin.Context, err error) {
	middleware.AbortWithError(c, models.AsAppError(err))
}
